package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/fsm"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/remote"
	"golang.org/x/sync/errgroup"
)

// Where the initial record came from.
const (
	SourceDefault = "default"
	SourceLocal   = "local"
	SourceRemote  = "remote"
	SourceMerged  = "merged"
)

// InitResult is the outcome of loading one roadmap.
type InitResult struct {
	Record     models.ProgressRecord
	Definition *models.RoadmapDefinition
	Source     string
}

// Initializer produces the initial progress record for a roadmap by merging
// the local cache with the remote store.
type Initializer struct {
	cache   LocalCacheStore
	gateway RemoteGateway
	writer  *ProgressWriter
	logger  *slog.Logger

	mu    sync.Mutex
	phase string
}

func NewInitializer(cache LocalCacheStore, gateway RemoteGateway, writer *ProgressWriter, logger *slog.Logger) *Initializer {
	return &Initializer{
		cache:   cache,
		gateway: gateway,
		writer:  writer,
		logger:  logging.NewComponentLogger(logger, "initializer"),
		phase:   fsm.StateUninitialized,
	}
}

func (i *Initializer) Phase() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

func (i *Initializer) setPhase(phase string) {
	i.mu.Lock()
	i.phase = phase
	i.mu.Unlock()
}

// Initialize loads, merges and persists the starting record. Unreachable or
// malformed sources are treated as absent; only ctx cancellation is an error.
func (i *Initializer) Initialize(ctx context.Context, roadmapID, candidateID string) (InitResult, error) {
	logger := i.logger.With(
		logging.String(logging.FieldRoadmapID, roadmapID),
		logging.String(logging.FieldCandidateID, candidateID),
	)
	i.setPhase(fsm.StateMerging)

	var (
		local     models.ProgressRecord
		localOK   bool
		remoteRec models.ProgressRecord
		remoteErr error
		def       models.RoadmapDefinition
		defErr    error
	)

	var g errgroup.Group
	g.Go(func() error {
		if i.cache != nil {
			local, localOK = i.cache.Load(roadmapID)
		}
		return nil
	})
	if i.gateway != nil {
		g.Go(func() error {
			remoteRec, remoteErr = i.gateway.Fetch(ctx, roadmapID, candidateID)
			return nil
		})
		g.Go(func() error {
			def, defErr = i.gateway.FetchDefinition(ctx, roadmapID)
			return nil
		})
	} else {
		remoteErr = remote.ErrNotFound
		defErr = remote.ErrNotFound
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		i.setPhase(fsm.StateUninitialized)
		return InitResult{}, err
	}

	if localOK && local.CandidateID != "" && local.CandidateID != candidateID {
		logger.Info("cached progress belongs to another candidate, ignoring",
			logging.String("cached_candidate_id", local.CandidateID),
		)
		localOK = false
	}

	remoteOK := remoteErr == nil
	if remoteErr != nil {
		i.logRemoteFailure(logger, "progress fetch", remoteErr)
	}

	var result InitResult
	switch {
	case localOK && remoteOK:
		result.Record = models.MergeMonotonic(local, remoteRec)
		result.Source = SourceMerged
	case localOK:
		result.Record = local
		result.Source = SourceLocal
	case remoteOK:
		result.Record = remoteRec
		result.Source = SourceRemote
	default:
		result.Record = models.NewProgressRecord(roadmapID, candidateID)
		result.Source = SourceDefault
	}
	result.Record.RoadmapID = roadmapID
	result.Record.CandidateID = candidateID

	if defErr == nil {
		result.Definition = &def
		result.Record = models.ReconcileGates(result.Record, def)
	} else {
		i.logRemoteFailure(logger, "definition fetch", defErr)
	}
	result.Record = models.Recalculate(result.Record)

	i.writer.Write(ctx, result.Record)
	i.setPhase(fsm.StateReady)

	logger.Info("roadmap progress initialized",
		logging.String(logging.FieldEventType, "progress_initialized"),
		logging.String("source", result.Source),
		logging.Int("progress_percent", result.Record.ProgressPercent),
		logging.Int(logging.FieldStepID, int(result.Record.ActiveStepID)),
		logging.Bool("terminal", result.Record.IsTerminal()),
	)
	return result, nil
}

func (i *Initializer) logRemoteFailure(logger *slog.Logger, what string, err error) {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		logger.Debug(what+": nothing stored remotely", logging.Error(err))
	case errors.Is(err, models.ErrMalformedPayload):
		logging.WarnWithContext(logger, what+": malformed remote payload discarded", "remote_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "continuing with local progress"),
		)
	default:
		logging.WarnWithContext(logger, what+": remote unavailable", "remote_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check remote.base_url and network"),
			logging.String(logging.FieldImpact, "continuing with local progress"),
		)
	}
}
