package services

import (
	"context"
	"sync"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/remote"
)

type fakeCache struct {
	mu      sync.Mutex
	records map[string]models.ProgressRecord
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]models.ProgressRecord{}}
}

func (c *fakeCache) Load(roadmapID string) (models.ProgressRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[roadmapID]
	if !ok {
		return models.ProgressRecord{}, false
	}
	return r.Clone(), true
}

func (c *fakeCache) Save(roadmapID string, r models.ProgressRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[roadmapID] = r.Clone()
	c.saves++
}

func (c *fakeCache) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

type fakeGateway struct {
	mu sync.Mutex

	record     *models.ProgressRecord
	fetchErr   error
	definition *models.RoadmapDefinition
	status     models.TerminalStatus
	statusErr  error

	persistErrs []error
	persisted   []models.ProgressRecord
	persistCtx  []context.Context
	statusCalls int
}

func (g *fakeGateway) Fetch(ctx context.Context, roadmapID, candidateID string) (models.ProgressRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return models.ProgressRecord{}, g.fetchErr
	}
	if g.record == nil {
		return models.ProgressRecord{}, remote.ErrNotFound
	}
	return g.record.Clone(), nil
}

func (g *fakeGateway) Persist(ctx context.Context, roadmapID, candidateID string, r models.ProgressRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.persisted = append(g.persisted, r.Clone())
	g.persistCtx = append(g.persistCtx, ctx)
	if len(g.persistErrs) > 0 {
		err := g.persistErrs[0]
		g.persistErrs = g.persistErrs[1:]
		return err
	}
	return nil
}

func (g *fakeGateway) FetchCompletion(ctx context.Context, roadmapID, candidateID string) (models.TerminalStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return models.TerminalPending, g.statusErr
	}
	return g.status.Normalize(), nil
}

func (g *fakeGateway) FetchDefinition(ctx context.Context, roadmapID string) (models.RoadmapDefinition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.definition == nil {
		return models.RoadmapDefinition{}, remote.ErrNotFound
	}
	return *g.definition, nil
}

func (g *fakeGateway) setStatus(status models.TerminalStatus) {
	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
}

func (g *fakeGateway) persistedRecords() []models.ProgressRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.ProgressRecord(nil), g.persisted...)
}

func (g *fakeGateway) completionCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

// recordingPersister captures enqueued writes synchronously.
type recordingPersister struct {
	mu      sync.Mutex
	records []models.ProgressRecord
}

func (p *recordingPersister) Enqueue(ctx context.Context, r models.ProgressRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r.Clone())
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func testDefinition() *models.RoadmapDefinition {
	return &models.RoadmapDefinition{
		RoadmapID: "r1",
		Company:   "Acme",
		Courses:   []models.Subtask{{ID: "go-basics"}, {ID: "sql-101"}},
		Skills:    []models.Subtask{{ID: "testing"}, {ID: "profiling"}},
	}
}

func recordWith(steps ...models.StepID) models.ProgressRecord {
	r := models.NewProgressRecord("r1", "c1")
	for _, id := range steps {
		r.StepCompletion[id] = true
	}
	return models.Recalculate(r)
}
