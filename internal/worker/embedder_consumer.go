package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/middleware"
)

// EmbedderConsumer handles chunk-embed events on the async ingestion path:
// embed the chunk text, store it in the content index.
type EmbedderConsumer struct {
	embedder Embedder
	store    VectorStore
}

func NewEmbedderConsumer(e Embedder, s VectorStore) *EmbedderConsumer {
	return &EmbedderConsumer{embedder: e, store: s}
}

func (h *EmbedderConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload ChunkEmbedPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	embedCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	vector, err := h.embedder.Embed(embedCtx, payload.Content)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err, "course", payload.CourseTitle, "chunk_index", payload.ChunkIndex)
		return err // Retry
	}

	chunk := Chunk{
		Content:      payload.Content,
		Vector:       vector,
		CourseTitle:  payload.CourseTitle,
		LessonNumber: payload.LessonNumber,
		ChunkIndex:   payload.ChunkIndex,
	}

	if err := h.store.StoreChunk(embedCtx, chunk); err != nil {
		slog.ErrorContext(ctx, "store chunk failed", "error", err, "course", payload.CourseTitle, "chunk_index", payload.ChunkIndex)
		return err // Retry
	}

	slog.InfoContext(ctx, "chunk stored", "course", payload.CourseTitle, "lesson", payload.LessonNumber, "chunk_index", payload.ChunkIndex)
	return nil
}
