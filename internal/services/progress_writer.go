package services

import (
	"context"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// ProgressWriter applies the persistence policy shared by every mutation:
// synchronous local save, then a queued remote write.
type ProgressWriter struct {
	cache  LocalCacheStore
	remote Persister
}

func NewProgressWriter(cache LocalCacheStore, remote Persister) *ProgressWriter {
	return &ProgressWriter{cache: cache, remote: remote}
}

func (w *ProgressWriter) Write(ctx context.Context, r models.ProgressRecord) {
	if w.cache != nil {
		w.cache.Save(r.RoadmapID, r)
	}
	if w.remote != nil {
		w.remote.Enqueue(ctx, r)
	}
}
