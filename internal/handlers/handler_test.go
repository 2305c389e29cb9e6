package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/remote"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type testAPI struct {
	server   *httptest.Server
	roadmaps *db.RoadmapRepository
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	queue := db.NewDBQueueForTest(sqlDB)

	progressRepo := db.NewProgressRepository(queue)
	quizRepo := db.NewQuizRepository(queue)
	roadmaps := db.NewRoadmapRepository(queue)
	handler := NewProgressHandler(
		services.NewStateResolver(progressRepo, quizRepo, 70),
		roadmaps,
		services.NewStatisticsService(progressRepo, quizRepo, 70),
		nil,
	)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(func() {
		srv.Close()
		queue.Close()
		sqlDB.Close()
	})
	return &testAPI{server: srv, roadmaps: roadmaps}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const progressPath = "/api/roadmaps/r1/candidates/c1/progress"

func TestGetProgress_NotFound(t *testing.T) {
	api := setupTestAPI(t)

	resp := api.do(t, http.MethodGet, progressPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(remote.HeaderRequestID))
	assert.NotEmpty(t, decodeBody[remote.ErrorPayload](t, resp).Error)
}

func TestPostProgress_ThenGet(t *testing.T) {
	api := setupTestAPI(t)

	record := models.NewProgressRecord("ignored", "ignored")
	record.StepCompletion[models.StepPrerequisites] = true
	record.CourseCompletion = map[string]bool{"go-basics": true}
	resp := api.do(t, http.MethodPost, progressPath, remote.FromRecord(models.Recalculate(record)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, progressPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeBody[remote.ProgressPayload](t, resp)
	assert.Equal(t, "r1", payload.RoadmapID)
	assert.Equal(t, "c1", payload.CandidateID)
	assert.Equal(t, 25, payload.ProgressPercent)
	assert.Equal(t, models.StepCourses, payload.ActiveStepID)
	assert.True(t, payload.CourseCompletion["go-basics"])
}

func TestPostProgress_StepsNeverRegress(t *testing.T) {
	api := setupTestAPI(t)

	ahead := models.NewProgressRecord("r1", "c1")
	ahead.StepCompletion[models.StepPrerequisites] = true
	ahead.StepCompletion[models.StepCourses] = true
	api.do(t, http.MethodPost, progressPath, remote.FromRecord(models.Recalculate(ahead)))

	stale := models.NewProgressRecord("r1", "c1")
	resp := api.do(t, http.MethodPost, progressPath, remote.FromRecord(stale))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody[remote.ProgressPayload](t, resp)
	assert.Equal(t, 50, payload.ProgressPercent, "stale write must not undo completed steps")
}

func TestPostProgress_Malformed(t *testing.T) {
	api := setupTestAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing steps", map[string]any{"terminal_status": "pending"}},
		{"three steps", map[string]any{"step_completion": map[string]bool{"1": true, "2": false, "3": false}}},
		{"bad status", map[string]any{"step_completion": map[string]bool{"1": true, "2": false, "3": false, "4": false}, "terminal_status": "x"}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, progressPath, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestQuizResult_DrivesCompletion(t *testing.T) {
	api := setupTestAPI(t)
	completionPath := "/api/roadmaps/r1/candidates/c1/completion"
	quizPath := "/api/roadmaps/r1/candidates/c1/quiz"

	completion := decodeBody[remote.CompletionPayload](t, api.do(t, http.MethodGet, completionPath, nil))
	assert.Equal(t, models.TerminalPending, completion.Status)
	assert.Nil(t, completion.BestScore)
	assert.Equal(t, 70, completion.PassingScore)

	resp := api.do(t, http.MethodPost, quizPath, remote.QuizResultRequest{Score: 40})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.False(t, decodeBody[remote.QuizResultResponse](t, resp).Passed)

	resp = api.do(t, http.MethodPost, quizPath, remote.QuizResultRequest{Score: 91})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decodeBody[remote.QuizResultResponse](t, resp)
	assert.True(t, result.Passed)
	assert.Equal(t, models.TerminalCompleted, result.Status)

	completion = decodeBody[remote.CompletionPayload](t, api.do(t, http.MethodGet, completionPath, nil))
	assert.Equal(t, models.TerminalCompleted, completion.Status)
	require.NotNil(t, completion.BestScore)
	assert.Equal(t, 91, *completion.BestScore)

	progress := decodeBody[remote.ProgressPayload](t, api.do(t, http.MethodGet, progressPath, nil))
	assert.Equal(t, 100, progress.ProgressPercent)
	assert.Equal(t, models.TerminalCompleted, progress.TerminalStatus)
}

func TestQuizResult_RejectsOutOfRangeScore(t *testing.T) {
	api := setupTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/roadmaps/r1/candidates/c1/quiz", remote.QuizResultRequest{Score: 101})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDefinition(t *testing.T) {
	api := setupTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/roadmaps/r1/definition", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, api.roadmaps.Upsert(models.RoadmapDefinition{
		RoadmapID: "r1",
		Company:   "Acme",
		Courses:   []models.Subtask{{ID: "go-basics", Title: "Go basics"}},
		Skills:    []models.Subtask{{ID: "testing", Title: "Testing"}},
	}))

	resp = api.do(t, http.MethodGet, "/api/roadmaps/r1/definition", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	def := decodeBody[models.RoadmapDefinition](t, resp)
	assert.Equal(t, []string{"go-basics"}, def.CourseIDs())
	assert.Equal(t, []string{"testing"}, def.SkillIDs())

	list := decodeBody[map[string][]string](t, api.do(t, http.MethodGet, "/api/roadmaps", nil))
	assert.Equal(t, []string{"r1"}, list["roadmaps"])
}

func TestStats(t *testing.T) {
	api := setupTestAPI(t)

	for _, candidate := range []string{"c1", "c2"} {
		record := models.NewProgressRecord("r1", candidate)
		record.StepCompletion[models.StepPrerequisites] = true
		api.do(t, http.MethodPost, "/api/roadmaps/r1/candidates/"+candidate+"/progress", remote.FromRecord(models.Recalculate(record)))
	}

	stats := decodeBody[services.RoadmapStatistics](t, api.do(t, http.MethodGet, "/api/roadmaps/r1/stats", nil))
	require.Len(t, stats.Steps, models.StepCount())
	assert.Equal(t, 2, stats.Steps[0].Count)
	assert.Equal(t, 0, stats.Steps[1].Count)
}

func TestCandidateStats(t *testing.T) {
	api := setupTestAPI(t)

	record := models.NewProgressRecord("r1", "c1")
	record.StepCompletion[models.StepPrerequisites] = true
	api.do(t, http.MethodPost, progressPath, remote.FromRecord(models.Recalculate(record)))
	api.do(t, http.MethodPost, "/api/roadmaps/r1/candidates/c1/quiz", remote.QuizResultRequest{Score: 50})
	api.do(t, http.MethodPost, "/api/roadmaps/r1/candidates/c1/quiz", remote.QuizResultRequest{Score: 75})

	resp := api.do(t, http.MethodGet, "/api/roadmaps/r1/candidates/c1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[services.CandidateStatistics](t, resp)
	// The passing attempt also completes the quiz step.
	assert.Equal(t, 2, stats.CompletedSteps)
	assert.Equal(t, 2, stats.QuizAttempts)
	require.NotNil(t, stats.BestScore)
	assert.Equal(t, 75, *stats.BestScore)
	assert.Equal(t, 2, stats.PassedOnAttempt)
}

func TestMethodNotAllowed(t *testing.T) {
	api := setupTestAPI(t)

	resp := api.do(t, http.MethodDelete, progressPath, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := setupTestAPI(t)

	req, err := http.NewRequest(http.MethodGet, api.server.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(remote.HeaderRequestID, "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(remote.HeaderRequestID))
}
