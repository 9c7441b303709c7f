package worker

import (
	"context"
)

// Chunk is a content-index entry ready to store: chunk text (with its context
// header) plus the metadata the search filters run over.
type Chunk struct {
	Content      string
	Vector       []float32
	CourseTitle  string
	LessonNumber int
	ChunkIndex   int
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	StoreChunk(ctx context.Context, chunk Chunk) error
}
