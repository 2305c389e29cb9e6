package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// TransitionEngine marks roadmap steps complete.
type TransitionEngine struct {
	writer *ProgressWriter
	logger *slog.Logger
}

func NewTransitionEngine(writer *ProgressWriter, logger *slog.Logger) *TransitionEngine {
	return &TransitionEngine{
		writer: writer,
		logger: logging.NewComponentLogger(logger, "transitions"),
	}
}

// CompleteStep completes stepID and persists the result. Terminal records and
// already completed steps come back unchanged without a write.
func (e *TransitionEngine) CompleteStep(ctx context.Context, r models.ProgressRecord, stepID models.StepID) (models.ProgressRecord, error) {
	out, changed, err := ApplyStepCompletion(r, stepID)
	if err != nil {
		e.logger.Debug("step completion rejected",
			logging.String(logging.FieldRoadmapID, r.RoadmapID),
			logging.Int(logging.FieldStepID, int(stepID)),
			logging.Error(err),
		)
		return r, err
	}
	if !changed {
		return out, nil
	}

	e.writer.Write(ctx, out)
	e.logger.Info("step completed",
		logging.String(logging.FieldEventType, "step_completed"),
		logging.String(logging.FieldRoadmapID, out.RoadmapID),
		logging.Int(logging.FieldStepID, int(stepID)),
		logging.Int("progress_percent", out.ProgressPercent),
	)
	return out, nil
}

// ApplyStepCompletion is the pure transition. It reports whether the record
// changed.
func ApplyStepCompletion(r models.ProgressRecord, stepID models.StepID) (models.ProgressRecord, bool, error) {
	if r.IsTerminal() {
		return r, false, nil
	}
	if _, ok := models.LookupStep(stepID); !ok {
		return r, false, fmt.Errorf("%w: %d", models.ErrUnknownStep, stepID)
	}
	if stepID == models.StepQuiz {
		return r, false, models.ErrQuizStepManaged
	}
	if r.StepCompletion[stepID] {
		return r, false, nil
	}

	var remaining []string
	switch stepID {
	case models.StepCourses:
		if !r.ChecklistKnown(models.GateCourse) {
			return r, false, fmt.Errorf("%w: %w for %s", models.ErrGateNotSatisfied, models.ErrChecklistUnavailable, models.StepName(stepID))
		}
		remaining = r.PendingCourses()
	case models.StepImproveSkills:
		if !r.ChecklistKnown(models.GateSkill) {
			return r, false, fmt.Errorf("%w: %w for %s", models.ErrGateNotSatisfied, models.ErrChecklistUnavailable, models.StepName(stepID))
		}
		remaining = r.PendingSkills()
	}
	if len(remaining) > 0 {
		return r, false, &models.GateError{StepID: stepID, Remaining: remaining}
	}

	out := r.Clone()
	out.StepCompletion[stepID] = true
	return models.Recalculate(out), true, nil
}
