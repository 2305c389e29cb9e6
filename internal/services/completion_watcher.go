package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// CompletionWatcher applies the terminal override once the quiz flow reports
// the roadmap completed. The override wins over any concurrent step update.
type CompletionWatcher struct {
	gateway RemoteGateway
	writer  *ProgressWriter
	logger  *slog.Logger
}

func NewCompletionWatcher(gateway RemoteGateway, writer *ProgressWriter, logger *slog.Logger) *CompletionWatcher {
	return &CompletionWatcher{
		gateway: gateway,
		writer:  writer,
		logger:  logging.NewComponentLogger(logger, "completion_watcher"),
	}
}

// Status asks the remote store for the terminal status of r's roadmap.
func (w *CompletionWatcher) Status(ctx context.Context, r models.ProgressRecord) (models.TerminalStatus, error) {
	return w.gateway.FetchCompletion(ctx, r.RoadmapID, r.CandidateID)
}

// Apply overrides r to terminal when status is completed. It reports whether
// the record changed; repeated calls are no-ops.
func (w *CompletionWatcher) Apply(ctx context.Context, r models.ProgressRecord, status models.TerminalStatus) (models.ProgressRecord, bool) {
	if status != models.TerminalCompleted || r.IsTerminal() {
		return r, false
	}
	out := models.ApplyTerminal(r)
	w.writer.Write(ctx, out)
	w.logger.Info("roadmap completed",
		logging.String(logging.FieldEventType, "roadmap_completed"),
		logging.String(logging.FieldRoadmapID, out.RoadmapID),
		logging.String(logging.FieldCandidateID, out.CandidateID),
	)
	return out, true
}

// Check fetches the completion status and applies it to r.
func (w *CompletionWatcher) Check(ctx context.Context, r models.ProgressRecord) (models.ProgressRecord, bool, error) {
	status, err := w.Status(ctx, r)
	if err != nil {
		return r, false, err
	}
	out, changed := w.Apply(ctx, r, status)
	return out, changed, nil
}

// Run calls poll right away, on every refocus signal and, when interval is
// positive, on every tick until ctx is done.
func (w *CompletionWatcher) Run(ctx context.Context, poll func(context.Context), interval time.Duration, refocus <-chan struct{}) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-refocus:
			w.logger.Debug("refocus, checking completion")
			poll(ctx)
		case <-tick:
			poll(ctx)
		}
	}
}
