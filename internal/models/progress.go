package models

import (
	"fmt"
	"math"
	"sort"
)

// ProgressRecord is the progress of one candidate on one roadmap.
//
// ActiveStepID and ProgressPercent are derived; only Recalculate writes them.
// CourseCompletion and SkillChecklist gate the Courses and Improve Skills steps.
// GatesReconciled is set once the checklists have been aligned with a roadmap
// definition; before that an empty checklist means "not loaded", not "nothing to do".
type ProgressRecord struct {
	RoadmapID        string          `json:"roadmap_id"`
	CandidateID      string          `json:"candidate_id"`
	StepCompletion   map[StepID]bool `json:"step_completion"`
	ActiveStepID     StepID          `json:"active_step_id"`
	ProgressPercent  int             `json:"progress_percent"`
	TerminalStatus   TerminalStatus  `json:"terminal_status"`
	CourseCompletion map[string]bool `json:"course_completion"`
	SkillChecklist   map[string]bool `json:"skill_checklist"`
	GatesReconciled  bool            `json:"gates_reconciled"`
}

// NewProgressRecord materializes the all-false record used when no store has one yet.
func NewProgressRecord(roadmapID, candidateID string) ProgressRecord {
	steps := make(map[StepID]bool, StepCount())
	for _, id := range StepIDs() {
		steps[id] = false
	}
	return Recalculate(ProgressRecord{
		RoadmapID:        roadmapID,
		CandidateID:      candidateID,
		StepCompletion:   steps,
		TerminalStatus:   TerminalPending,
		CourseCompletion: map[string]bool{},
		SkillChecklist:   map[string]bool{},
	})
}

func (r ProgressRecord) IsTerminal() bool {
	return r.TerminalStatus == TerminalCompleted
}

func (r ProgressRecord) IsStepComplete(id StepID) bool {
	return r.IsTerminal() || r.StepCompletion[id]
}

func (r ProgressRecord) CompletedCount() int {
	count := 0
	for _, id := range StepIDs() {
		if r.StepCompletion[id] {
			count++
		}
	}
	return count
}

// ChecklistKnown reports whether the gate checklist of kind can be trusted.
// A non-empty checklist always came from a definition at some point.
func (r ProgressRecord) ChecklistKnown(kind GateKind) bool {
	if r.GatesReconciled {
		return true
	}
	switch kind {
	case GateCourse:
		return len(r.CourseCompletion) > 0
	case GateSkill:
		return len(r.SkillChecklist) > 0
	}
	return false
}

// PendingCourses returns the course ids not yet checked, sorted.
func (r ProgressRecord) PendingCourses() []string {
	return pendingKeys(r.CourseCompletion)
}

// PendingSkills returns the skill ids not yet checked, sorted.
func (r ProgressRecord) PendingSkills() []string {
	return pendingKeys(r.SkillChecklist)
}

// Clone returns a deep copy so callers can mutate without aliasing maps.
func (r ProgressRecord) Clone() ProgressRecord {
	out := r
	out.StepCompletion = make(map[StepID]bool, len(r.StepCompletion))
	for k, v := range r.StepCompletion {
		out.StepCompletion[k] = v
	}
	out.CourseCompletion = copyFlags(r.CourseCompletion)
	out.SkillChecklist = copyFlags(r.SkillChecklist)
	return out
}

// Recalculate recomputes ProgressPercent and ActiveStepID. A terminal record
// has every step forced to true and reports 100 percent.
func Recalculate(r ProgressRecord) ProgressRecord {
	out := r.Clone()
	out.TerminalStatus = out.TerminalStatus.Normalize()

	steps := make(map[StepID]bool, StepCount())
	for _, id := range StepIDs() {
		steps[id] = out.StepCompletion[id] || out.IsTerminal()
	}
	out.StepCompletion = steps

	if out.IsTerminal() {
		out.ProgressPercent = 100
		out.ActiveStepID = LastStepID()
		return out
	}

	done := out.CompletedCount()
	out.ProgressPercent = int(math.Round(100 * float64(done) / float64(StepCount())))
	out.ActiveStepID = LastStepID()
	for _, id := range StepIDs() {
		if !steps[id] {
			out.ActiveStepID = id
			break
		}
	}
	return out
}

// ValidateShape reports ErrMalformedPayload when the step map does not carry
// exactly the registry's step ids or the terminal status is unknown.
func ValidateShape(r ProgressRecord) error {
	if r.StepCompletion == nil {
		return fmt.Errorf("%w: missing step completion map", ErrMalformedPayload)
	}
	if len(r.StepCompletion) != StepCount() {
		return fmt.Errorf("%w: expected %d steps, got %d", ErrMalformedPayload, StepCount(), len(r.StepCompletion))
	}
	for _, id := range StepIDs() {
		if _, ok := r.StepCompletion[id]; !ok {
			return fmt.Errorf("%w: missing step %d", ErrMalformedPayload, id)
		}
	}
	if !r.TerminalStatus.Normalize().Valid() {
		return fmt.Errorf("%w: unknown terminal status %q", ErrMalformedPayload, r.TerminalStatus)
	}
	return nil
}

func IsValidShape(r ProgressRecord) bool {
	return ValidateShape(r) == nil
}

// MergeMonotonic combines two views of the same record without losing a
// completed step from either side. A terminal side is returned as is, with
// local taking precedence when both are terminal.
func MergeMonotonic(local, remote ProgressRecord) ProgressRecord {
	if local.IsTerminal() {
		return Recalculate(local)
	}
	if remote.IsTerminal() {
		out := Recalculate(remote)
		inheritIdentity(&out, local)
		return out
	}

	out := local.Clone()
	inheritIdentity(&out, remote)
	for _, id := range StepIDs() {
		out.StepCompletion[id] = local.StepCompletion[id] || remote.StepCompletion[id]
	}
	out.CourseCompletion = mergeFlags(local.CourseCompletion, remote.CourseCompletion)
	out.SkillChecklist = mergeFlags(local.SkillChecklist, remote.SkillChecklist)
	out.GatesReconciled = local.GatesReconciled || remote.GatesReconciled
	out.TerminalStatus = TerminalPending
	return Recalculate(out)
}

// ApplyTerminal forces the record into the completed state.
func ApplyTerminal(r ProgressRecord) ProgressRecord {
	out := r.Clone()
	out.TerminalStatus = TerminalCompleted
	return Recalculate(out)
}

// ReconcileGates aligns the gate checklists with the roadmap definition:
// missing ids are added unchecked, ids the definition no longer lists are
// dropped, existing values are kept. Terminal records are left alone.
func ReconcileGates(r ProgressRecord, def RoadmapDefinition) ProgressRecord {
	if r.IsTerminal() {
		return r.Clone()
	}
	out := r.Clone()
	out.CourseCompletion = alignFlags(r.CourseCompletion, def.CourseIDs())
	out.SkillChecklist = alignFlags(r.SkillChecklist, def.SkillIDs())
	out.GatesReconciled = true
	return out
}

func inheritIdentity(dst *ProgressRecord, src ProgressRecord) {
	if dst.RoadmapID == "" {
		dst.RoadmapID = src.RoadmapID
	}
	if dst.CandidateID == "" {
		dst.CandidateID = src.CandidateID
	}
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func mergeFlags(a, b map[string]bool) map[string]bool {
	out := copyFlags(a)
	for k, v := range b {
		out[k] = out[k] || v
	}
	return out
}

func alignFlags(current map[string]bool, ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = current[id]
	}
	return out
}

func pendingKeys(flags map[string]bool) []string {
	var pending []string
	for k, v := range flags {
		if !v {
			pending = append(pending, k)
		}
	}
	sort.Strings(pending)
	return pending
}
