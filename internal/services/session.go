package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/fsm"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

var ErrSessionClosed = errors.New("roadmap session closed")

type EngineOptions struct {
	RetryDelay   time.Duration
	QueueSize    int
	PollInterval time.Duration
}

// Engine wires the progress components together and opens sessions.
type Engine struct {
	gateway      RemoteGateway
	cache        LocalCacheStore
	sync         *RemoteSync
	writer       *ProgressWriter
	transitions  *TransitionEngine
	gates        *SubtaskGates
	watcher      *CompletionWatcher
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewEngine(cache LocalCacheStore, gateway RemoteGateway, opts EngineOptions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	remoteSync := NewRemoteSync(gateway, opts.RetryDelay, opts.QueueSize, logger)
	writer := NewProgressWriter(cache, remoteSync)
	return &Engine{
		gateway:      gateway,
		cache:        cache,
		sync:         remoteSync,
		writer:       writer,
		transitions:  NewTransitionEngine(writer, logger),
		gates:        NewSubtaskGates(writer, logger),
		watcher:      NewCompletionWatcher(gateway, writer, logger),
		pollInterval: opts.PollInterval,
		logger:       logging.NewComponentLogger(logger, "engine"),
	}
}

// OpenRoadmap loads the roadmap, checks once whether the quiz flow already
// completed it and returns a ready session. A failed completion check is
// logged and does not fail the open.
func (e *Engine) OpenRoadmap(ctx context.Context, roadmapID, candidateID string) (*Session, error) {
	if roadmapID == "" {
		return nil, fmt.Errorf("open roadmap: empty roadmap id")
	}
	initializer := NewInitializer(e.cache, e.gateway, e.writer, e.logger)
	result, err := initializer.Initialize(ctx, roadmapID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("open roadmap %s: %w", roadmapID, err)
	}

	phase := fsm.StateReady
	if result.Record.IsTerminal() {
		phase = fsm.StateTerminal
	}
	session := &Session{
		engine:     e,
		record:     result.Record,
		definition: result.Definition,
		source:     result.Source,
		phase:      phase,
		refocus:    make(chan struct{}, 1),
	}
	if phase != fsm.StateTerminal {
		if _, _, err := session.CheckCompletion(ctx); err != nil && ctx.Err() == nil {
			e.logger.Debug("completion check on open failed",
				logging.String(logging.FieldRoadmapID, roadmapID),
				logging.Error(err),
			)
		}
	}
	return session, nil
}

// Flush waits for queued remote writes.
func (e *Engine) Flush() {
	e.sync.Flush()
}

// Close waits for queued remote writes and stops the writer.
func (e *Engine) Close() {
	e.sync.Close()
}

// Session is one open roadmap view. All mutations are serialized; the
// completion watcher may fire from its own goroutine.
type Session struct {
	engine     *Engine
	definition *models.RoadmapDefinition
	source     string
	refocus    chan struct{}

	mu        sync.Mutex
	record    models.ProgressRecord
	phase     string
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// StepView is one row of the step list.
type StepView struct {
	ID        models.StepID
	Name      string
	Completed bool
	Active    bool
}

// ProgressView is the read-only projection shown to the candidate.
type ProgressView struct {
	RoadmapID       string
	CandidateID     string
	ProgressPercent int
	ActiveStepID    models.StepID
	ActiveStepName  string
	Terminal        bool
	Steps           []StepView
	PendingCourses  []string
	PendingSkills   []string
}

func NewProgressView(r models.ProgressRecord) ProgressView {
	view := ProgressView{
		RoadmapID:       r.RoadmapID,
		CandidateID:     r.CandidateID,
		ProgressPercent: r.ProgressPercent,
		ActiveStepID:    r.ActiveStepID,
		ActiveStepName:  models.StepName(r.ActiveStepID),
		Terminal:        r.IsTerminal(),
		PendingCourses:  r.PendingCourses(),
		PendingSkills:   r.PendingSkills(),
	}
	for _, step := range models.Steps() {
		view.Steps = append(view.Steps, StepView{
			ID:        step.ID,
			Name:      step.Name,
			Completed: r.IsStepComplete(step.ID),
			Active:    !r.IsTerminal() && step.ID == r.ActiveStepID,
		})
	}
	return view
}

func (s *Session) View() ProgressView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewProgressView(s.record)
}

func (s *Session) Record() models.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Definition returns the roadmap definition, or nil when it could not be fetched.
func (s *Session) Definition() *models.RoadmapDefinition {
	return s.definition
}

// Source reports where the initial record came from.
func (s *Session) Source() string {
	return s.source
}

func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) CompleteStep(ctx context.Context, stepID models.StepID) (ProgressView, error) {
	return s.mutate(func(r models.ProgressRecord) (models.ProgressRecord, error) {
		return s.engine.transitions.CompleteStep(ctx, r, stepID)
	})
}

func (s *Session) ToggleCourse(ctx context.Context, courseID string) (ProgressView, error) {
	return s.mutate(func(r models.ProgressRecord) (models.ProgressRecord, error) {
		return s.engine.gates.ToggleCourse(ctx, r, courseID)
	})
}

func (s *Session) ToggleSkill(ctx context.Context, skillID string) (ProgressView, error) {
	return s.mutate(func(r models.ProgressRecord) (models.ProgressRecord, error) {
		return s.engine.gates.ToggleSkill(ctx, r, skillID)
	})
}

func (s *Session) mutate(fn func(models.ProgressRecord) (models.ProgressRecord, error)) (ProgressView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == fsm.StateClosed {
		return NewProgressView(s.record), ErrSessionClosed
	}
	out, err := fn(s.record)
	if err != nil {
		return NewProgressView(s.record), err
	}
	s.record = out
	return NewProgressView(s.record), nil
}

// CheckCompletion asks the remote store whether the quiz flow finished the
// roadmap and applies the terminal override if so. The network call runs
// outside the session lock.
func (s *Session) CheckCompletion(ctx context.Context) (ProgressView, bool, error) {
	snapshot := s.Record()
	if snapshot.IsTerminal() {
		return NewProgressView(snapshot), false, nil
	}
	status, err := s.engine.watcher.Status(ctx, snapshot)
	if err != nil {
		return NewProgressView(snapshot), false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == fsm.StateClosed {
		return NewProgressView(s.record), false, ErrSessionClosed
	}
	out, changed := s.engine.watcher.Apply(ctx, s.record, status)
	s.record = out
	if out.IsTerminal() {
		s.phase = fsm.StateTerminal
	}
	return NewProgressView(s.record), changed, nil
}

// Refocus signals that the view regained focus. It never blocks.
func (s *Session) Refocus() {
	select {
	case s.refocus <- struct{}{}:
	default:
	}
}

// Watch starts the background completion watcher. onChange, if set, is
// called with the new view after the terminal override lands.
func (s *Session) Watch(ctx context.Context, onChange func(ProgressView)) {
	s.mu.Lock()
	if s.stopWatch != nil || s.phase == fsm.StateClosed {
		s.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.stopWatch = cancel
	s.watchDone = make(chan struct{})
	if s.phase == fsm.StateReady {
		s.phase = fsm.StateWatching
	}
	done := s.watchDone
	s.mu.Unlock()

	poll := func(ctx context.Context) {
		view, changed, err := s.CheckCompletion(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.engine.logger.Debug("completion check failed",
					logging.String(logging.FieldRoadmapID, view.RoadmapID),
					logging.Error(err),
				)
			}
			return
		}
		if changed && onChange != nil {
			onChange(view)
		}
	}

	go func() {
		defer close(done)
		s.engine.watcher.Run(watchCtx, poll, s.engine.pollInterval, s.refocus)
	}()
}

// Close stops the watcher. Queued remote writes keep going; use Engine.Flush
// to wait for them.
func (s *Session) Close() {
	s.mu.Lock()
	stop, done := s.stopWatch, s.watchDone
	s.stopWatch = nil
	s.phase = fsm.StateClosed
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}
