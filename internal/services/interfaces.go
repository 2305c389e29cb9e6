package services

import (
	"context"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// LocalCacheStore is the device-local copy of progress, keyed by roadmap.
// Load reports absent for missing or malformed entries; Save never fails
// from the caller's point of view.
type LocalCacheStore interface {
	Load(roadmapID string) (models.ProgressRecord, bool)
	Save(roadmapID string, r models.ProgressRecord)
}

// RemoteGateway is the authoritative progress store.
type RemoteGateway interface {
	Fetch(ctx context.Context, roadmapID, candidateID string) (models.ProgressRecord, error)
	Persist(ctx context.Context, roadmapID, candidateID string, r models.ProgressRecord) error
	FetchCompletion(ctx context.Context, roadmapID, candidateID string) (models.TerminalStatus, error)
	FetchDefinition(ctx context.Context, roadmapID string) (models.RoadmapDefinition, error)
}

// Persister queues a best-effort remote write.
type Persister interface {
	Enqueue(ctx context.Context, r models.ProgressRecord)
}
