package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// SubtaskGates flips course and skill checklist items. Checking every item
// unlocks the parent step but never completes it.
type SubtaskGates struct {
	writer *ProgressWriter
	logger *slog.Logger
}

func NewSubtaskGates(writer *ProgressWriter, logger *slog.Logger) *SubtaskGates {
	return &SubtaskGates{
		writer: writer,
		logger: logging.NewComponentLogger(logger, "gates"),
	}
}

func (g *SubtaskGates) ToggleCourse(ctx context.Context, r models.ProgressRecord, courseID string) (models.ProgressRecord, error) {
	return g.toggle(ctx, r, models.GateCourse, courseID)
}

func (g *SubtaskGates) ToggleSkill(ctx context.Context, r models.ProgressRecord, skillID string) (models.ProgressRecord, error) {
	return g.toggle(ctx, r, models.GateSkill, skillID)
}

func (g *SubtaskGates) toggle(ctx context.Context, r models.ProgressRecord, kind models.GateKind, id string) (models.ProgressRecord, error) {
	out, changed, err := ApplyToggle(r, kind, id)
	if err != nil || !changed {
		return out, err
	}
	g.writer.Write(ctx, out)
	g.logger.Debug("sub-task toggled",
		logging.String(logging.FieldRoadmapID, out.RoadmapID),
		logging.String("kind", string(kind)),
		logging.String("subtask_id", id),
	)
	return out, nil
}

// ApplyToggle is the pure toggle. Terminal records are returned unchanged.
func ApplyToggle(r models.ProgressRecord, kind models.GateKind, id string) (models.ProgressRecord, bool, error) {
	if r.IsTerminal() {
		return r, false, nil
	}
	out := r.Clone()
	flags := out.CourseCompletion
	if kind == models.GateSkill {
		flags = out.SkillChecklist
	}
	current, ok := flags[id]
	if !ok {
		return r, false, fmt.Errorf("%w: %s %q", models.ErrUnknownSubtask, kind, id)
	}
	flags[id] = !current
	return models.Recalculate(out), true, nil
}
