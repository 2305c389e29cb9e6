package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

const (
	DefaultRetryDelay = 2 * time.Second
	DefaultQueueSize  = 64
)

type persistTask struct {
	ctx    context.Context
	record models.ProgressRecord
}

// RemoteSync pushes records to the remote store from a single worker
// goroutine. Each write is tried once, retried once after retryDelay, then
// logged and dropped. Callers never see remote write failures.
type RemoteSync struct {
	gateway    RemoteGateway
	retryDelay time.Duration
	logger     *slog.Logger

	tasks chan persistTask
	done  chan struct{}

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	closed  bool
}

func NewRemoteSync(gateway RemoteGateway, retryDelay time.Duration, queueSize int, logger *slog.Logger) *RemoteSync {
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	s := &RemoteSync{
		gateway:    gateway,
		retryDelay: retryDelay,
		logger:     logging.NewComponentLogger(logger, "remote_sync"),
		tasks:      make(chan persistTask, queueSize),
		done:       make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.worker()
	return s
}

// Enqueue schedules r for persistence and returns immediately. The write
// outlives ctx cancellation. When the queue is full the write is dropped;
// the next mutation carries the full record again.
func (s *RemoteSync) Enqueue(ctx context.Context, r models.ProgressRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("remote sync closed, write skipped",
			logging.String(logging.FieldRoadmapID, r.RoadmapID),
		)
		return
	}
	task := persistTask{ctx: context.WithoutCancel(ctx), record: r.Clone()}
	select {
	case s.tasks <- task:
		s.pending++
	default:
		logging.WarnWithContext(s.logger, "remote write queue full", "persist_dropped",
			logging.String(logging.FieldRoadmapID, r.RoadmapID),
			logging.String(logging.FieldImpact, "write skipped; next mutation resends the record"),
		)
	}
}

// Flush blocks until every queued write has been attempted.
func (s *RemoteSync) Flush() {
	s.mu.Lock()
	for s.pending > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Close stops accepting writes and waits for the queued ones.
func (s *RemoteSync) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()
	<-s.done
}

func (s *RemoteSync) worker() {
	defer close(s.done)
	for task := range s.tasks {
		s.persist(task)
		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
	}
}

func (s *RemoteSync) persist(task persistTask) {
	r := task.record
	err := s.gateway.Persist(task.ctx, r.RoadmapID, r.CandidateID, r)
	if err == nil {
		return
	}
	s.logger.Info("remote write failed, retrying",
		logging.String(logging.FieldRoadmapID, r.RoadmapID),
		logging.Duration("retry_in", s.retryDelay),
		logging.Error(err),
	)
	time.Sleep(s.retryDelay)

	if err := s.gateway.Persist(task.ctx, r.RoadmapID, r.CandidateID, r); err != nil {
		logging.WarnWithContext(s.logger, "remote write failed after retry", "persist_failed",
			logging.String(logging.FieldRoadmapID, r.RoadmapID),
			logging.String(logging.FieldCandidateID, r.CandidateID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check remote.base_url and server availability"),
			logging.String(logging.FieldImpact, "progress kept locally; next mutation resends it"),
		)
		return
	}
	s.logger.Debug("remote write succeeded on retry",
		logging.String(logging.FieldRoadmapID, r.RoadmapID),
	)
}
