package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/middleware"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/orchestrator"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/tools"
)

// Answerer runs one user query through the model loop and returns the final
// answer plus the sources of any search performed for it.
type Answerer interface {
	Answer(ctx context.Context, sessionID, query string) (string, []tools.Source, error)
}

type Handler struct {
	answerer Answerer
}

func NewHandler(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type QueryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}

	// A missing session id starts a fresh conversation.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	slog.InfoContext(ctx, "handling query",
		"session_id", sessionID, "correlationId", correlationID)

	answer, sources, err := h.answerer.Answer(ctx, sessionID, req.Query)
	if err != nil {
		if errors.Is(err, orchestrator.ErrGeneration) {
			slog.ErrorContext(ctx, "generation failed", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "GENERATION_ERROR", "failed to generate a response", http.StatusBadGateway)
			return
		}
		slog.ErrorContext(ctx, "query failed", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if sources == nil {
		sources = []tools.Source{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
