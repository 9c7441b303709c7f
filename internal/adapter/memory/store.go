package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

// Store is an in-process dual index over cosine distance. It backs tests and
// deployments without a Weaviate instance; writes happen at ingestion time
// only, reads afterwards, matching the query-time access pattern.
type Store struct {
	mu      sync.RWMutex
	catalog []catalogEntry
	chunks  []chunkEntry
}

type catalogEntry struct {
	meta   retrieval.CourseMeta
	vector []float32
}

type chunkEntry struct {
	chunk worker.Chunk
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) AddCourse(ctx context.Context, meta retrieval.CourseMeta, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog {
		if s.catalog[i].meta.Title == meta.Title {
			s.catalog[i] = catalogEntry{meta: meta, vector: vec}
			return nil
		}
	}
	s.catalog = append(s.catalog, catalogEntry{meta: meta, vector: vec})
	return nil
}

func (s *Store) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunkEntry{chunk: chunk})
	return nil
}

func (s *Store) Resolve(ctx context.Context, vec []float32) (*retrieval.CourseMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.catalog) == 0 {
		return nil, nil
	}

	best := 0
	bestDist := cosineDistance(vec, s.catalog[0].vector)
	for i := 1; i < len(s.catalog); i++ {
		if d := cosineDistance(vec, s.catalog[i].vector); d < bestDist {
			best, bestDist = i, d
		}
	}
	return &retrieval.CourseMatch{Title: s.catalog[best].meta.Title, Distance: float32(bestDist)}, nil
}

func (s *Store) GetCourse(ctx context.Context, title string) (*retrieval.CourseMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.catalog {
		if s.catalog[i].meta.Title == title {
			meta := s.catalog[i].meta
			return &meta, nil
		}
	}
	return nil, nil
}

func (s *Store) Search(ctx context.Context, vec []float32, filter retrieval.ChunkFilter, limit int) ([]retrieval.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []retrieval.SearchResult
	for _, e := range s.chunks {
		if filter.CourseTitle != "" && e.chunk.CourseTitle != filter.CourseTitle {
			continue
		}
		if filter.LessonNumber != nil && e.chunk.LessonNumber != *filter.LessonNumber {
			continue
		}
		results = append(results, retrieval.SearchResult{
			Content:      e.chunk.Content,
			CourseTitle:  e.chunk.CourseTitle,
			LessonNumber: e.chunk.LessonNumber,
			ChunkIndex:   e.chunk.ChunkIndex,
			Distance:     float32(cosineDistance(vec, e.chunk.Vector)),
		})
	}

	// Stable: equal distances keep insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity, so lower means more relevant and
// the value stays non-negative for non-degenerate vectors.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
