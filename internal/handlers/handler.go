package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/remote"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// ProgressHandler serves the remote progress store API.
type ProgressHandler struct {
	resolver *services.StateResolver
	roadmaps *db.RoadmapRepository
	stats    *services.StatisticsService
	logger   *slog.Logger
}

func NewProgressHandler(
	resolver *services.StateResolver,
	roadmaps *db.RoadmapRepository,
	stats *services.StatisticsService,
	logger *slog.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		resolver: resolver,
		roadmaps: roadmaps,
		stats:    stats,
		logger:   logging.NewComponentLogger(logger, "api"),
	}
}

// Routes returns the API wrapped with request id and panic recovery.
func (h *ProgressHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/roadmaps", h.handleListRoadmaps)
	mux.HandleFunc("GET /api/roadmaps/{roadmapID}/definition", h.handleDefinition)
	mux.HandleFunc("GET /api/roadmaps/{roadmapID}/stats", h.handleStats)
	mux.HandleFunc("GET /api/roadmaps/{roadmapID}/candidates/{candidateID}/progress", h.handleGetProgress)
	mux.HandleFunc("POST /api/roadmaps/{roadmapID}/candidates/{candidateID}/progress", h.handlePostProgress)
	mux.HandleFunc("GET /api/roadmaps/{roadmapID}/candidates/{candidateID}/completion", h.handleCompletion)
	mux.HandleFunc("POST /api/roadmaps/{roadmapID}/candidates/{candidateID}/quiz", h.handleQuizResult)
	mux.HandleFunc("GET /api/roadmaps/{roadmapID}/candidates/{candidateID}/stats", h.handleCandidateStats)
	return h.withRequestID(h.recoverPanic(mux))
}

func (h *ProgressHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ProgressHandler) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	ids, err := h.roadmaps.ListIDs()
	if err != nil {
		h.internalError(w, r, "list roadmaps", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"roadmaps": ids})
}

func (h *ProgressHandler) handleDefinition(w http.ResponseWriter, r *http.Request) {
	roadmapID := r.PathValue("roadmapID")
	def, err := h.roadmaps.Get(roadmapID)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("roadmap %q not found", roadmapID))
		return
	}
	if err != nil {
		h.internalError(w, r, "load definition", err)
		return
	}
	h.writeJSON(w, http.StatusOK, def)
}

func (h *ProgressHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.CalculateStats(r.PathValue("roadmapID"))
	if err != nil {
		h.internalError(w, r, "calculate stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *ProgressHandler) handleCandidateStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.CalculateCandidateStats(r.PathValue("candidateID"), r.PathValue("roadmapID"))
	if err != nil {
		h.internalError(w, r, "calculate candidate stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *ProgressHandler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	roadmapID, candidateID := r.PathValue("roadmapID"), r.PathValue("candidateID")
	record, found, err := h.resolver.ResolveProgress(candidateID, roadmapID)
	if err != nil {
		h.internalError(w, r, "resolve progress", err)
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "no progress stored")
		return
	}
	h.writeJSON(w, http.StatusOK, remote.FromRecord(record))
}

func (h *ProgressHandler) handlePostProgress(w http.ResponseWriter, r *http.Request) {
	roadmapID, candidateID := r.PathValue("roadmapID"), r.PathValue("candidateID")

	var payload remote.ProgressPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	record, err := payload.Record()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record.RoadmapID = roadmapID
	record.CandidateID = candidateID

	if err := h.resolver.ApplyUpdate(record); err != nil {
		h.internalError(w, r, "store progress", err)
		return
	}
	h.logger.Debug("progress stored",
		logging.String(logging.FieldRequestID, requestIDFrom(r)),
		logging.String(logging.FieldRoadmapID, roadmapID),
		logging.String(logging.FieldCandidateID, candidateID),
		logging.String("idempotency_key", r.Header.Get(remote.HeaderIdempotencyKey)),
	)

	stored, _, err := h.resolver.ResolveProgress(candidateID, roadmapID)
	if err != nil {
		h.internalError(w, r, "resolve progress", err)
		return
	}
	h.writeJSON(w, http.StatusOK, remote.FromRecord(stored))
}

func (h *ProgressHandler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	roadmapID, candidateID := r.PathValue("roadmapID"), r.PathValue("candidateID")
	completion, err := h.resolver.ResolveCompletion(candidateID, roadmapID)
	if err != nil {
		h.internalError(w, r, "resolve completion", err)
		return
	}
	h.writeJSON(w, http.StatusOK, remote.CompletionPayload{
		RoadmapID:    roadmapID,
		CandidateID:  candidateID,
		Status:       completion.Status,
		BestScore:    completion.BestScore,
		PassingScore: completion.PassingScore,
	})
}

func (h *ProgressHandler) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	roadmapID, candidateID := r.PathValue("roadmapID"), r.PathValue("candidateID")

	var req remote.QuizResultRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		h.writeError(w, http.StatusBadRequest, "score must be between 0 and 100")
		return
	}

	id, passed, err := h.resolver.RecordQuizResult(candidateID, roadmapID, req.Score)
	if err != nil {
		h.internalError(w, r, "record quiz result", err)
		return
	}
	completion, err := h.resolver.ResolveCompletion(candidateID, roadmapID)
	if err != nil {
		h.internalError(w, r, "resolve completion", err)
		return
	}
	h.logger.Info("quiz result recorded",
		logging.String(logging.FieldEventType, "quiz_result"),
		logging.String(logging.FieldRoadmapID, roadmapID),
		logging.String(logging.FieldCandidateID, candidateID),
		logging.Int("score", req.Score),
		logging.Bool("passed", passed),
	)
	h.writeJSON(w, http.StatusCreated, remote.QuizResultResponse{
		ID:     id,
		Score:  req.Score,
		Passed: passed,
		Status: completion.Status,
	})
}

func (h *ProgressHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (h *ProgressHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, remote.ErrorPayload{Error: message})
}

func (h *ProgressHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op+" failed",
		logging.String(logging.FieldRequestID, requestIDFrom(r)),
		logging.String(logging.FieldRoadmapID, r.PathValue("roadmapID")),
		logging.Error(err),
	)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *ProgressHandler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())
				if len(stack) > 4000 {
					stack = stack[:4000] + "\n... (truncated)"
				}
				h.logger.Error("panic in handler",
					logging.String(logging.FieldRequestID, requestIDFrom(r)),
					logging.String("path", r.URL.Path),
					logging.Any("panic", rec),
					logging.String("stack", stack),
				)
				h.writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *ProgressHandler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(remote.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(remote.HeaderRequestID, id)
		}
		w.Header().Set(remote.HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func requestIDFrom(r *http.Request) string {
	return r.Header.Get(remote.HeaderRequestID)
}
