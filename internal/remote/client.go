package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/google/uuid"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	maxErrorBody = 4 << 10
)

// HTTPDoer is the subset of *http.Client the gateway needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote progress store over JSON/HTTP.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "remote")
	return c
}

func (c *Client) progressPath(roadmapID, candidateID, leaf string) string {
	return fmt.Sprintf("%s/api/roadmaps/%s/candidates/%s/%s",
		c.baseURL, url.PathEscape(roadmapID), url.PathEscape(candidateID), leaf)
}

// Fetch returns the stored progress record. ErrNotFound when the store has
// none, models.ErrMalformedPayload when the body does not decode to a valid
// record, ErrNetworkFailure otherwise.
func (c *Client) Fetch(ctx context.Context, roadmapID, candidateID string) (models.ProgressRecord, error) {
	var payload ProgressPayload
	if err := c.doJSON(ctx, http.MethodGet, c.progressPath(roadmapID, candidateID, "progress"), nil, "", &payload); err != nil {
		return models.ProgressRecord{}, err
	}
	record, err := payload.Record()
	if err != nil {
		return models.ProgressRecord{}, err
	}
	return record, nil
}

// Persist upserts the record. Sending the same record twice is harmless.
func (c *Client) Persist(ctx context.Context, roadmapID, candidateID string, r models.ProgressRecord) error {
	payload := FromRecord(r)
	payload.RoadmapID = roadmapID
	payload.CandidateID = candidateID
	key, err := payload.IdempotencyKey()
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, c.progressPath(roadmapID, candidateID, "progress"), payload, key, nil)
}

func (c *Client) FetchCompletion(ctx context.Context, roadmapID, candidateID string) (models.TerminalStatus, error) {
	var payload CompletionPayload
	if err := c.doJSON(ctx, http.MethodGet, c.progressPath(roadmapID, candidateID, "completion"), nil, "", &payload); err != nil {
		return models.TerminalPending, err
	}
	status := payload.Status.Normalize()
	if !status.Valid() {
		return models.TerminalPending, fmt.Errorf("%w: unknown completion status %q", models.ErrMalformedPayload, payload.Status)
	}
	return status, nil
}

func (c *Client) FetchDefinition(ctx context.Context, roadmapID string) (models.RoadmapDefinition, error) {
	var def models.RoadmapDefinition
	endpoint := fmt.Sprintf("%s/api/roadmaps/%s/definition", c.baseURL, url.PathEscape(roadmapID))
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, "", &def); err != nil {
		return models.RoadmapDefinition{}, err
	}
	return def, nil
}

// RecordQuizResult posts the final quiz score on behalf of the quiz flow.
func (c *Client) RecordQuizResult(ctx context.Context, roadmapID, candidateID string, score int) (QuizResultResponse, error) {
	var resp QuizResultResponse
	err := c.doJSON(ctx, http.MethodPost, c.progressPath(roadmapID, candidateID, "quiz"), QuizResultRequest{Score: score}, "", &resp)
	return resp, err
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetworkFailure, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("remote request failed",
			logging.String(logging.FieldRequestID, requestID),
			logging.String("method", method),
			logging.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote request",
		logging.String(logging.FieldRequestID, requestID),
		logging.String("method", method),
		logging.String("path", req.URL.Path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrNetworkFailure, method, req.URL.Path, resp.StatusCode, errorMessage(resp.Body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: read body: %v", ErrNetworkFailure, err)
		}
		return fmt.Errorf("%w: %v", models.ErrMalformedPayload, err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return "no body"
	}
	var payload ErrorPayload
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
