package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyCatalog distinguishes "nothing ingested yet" from a low-confidence
// match; only the former is a hard resolution failure.
var (
	ErrEmptyCatalog = errors.New("course catalog is empty")
	ErrNoMatch      = errors.New("no course matched")
)

// SearchResult is one ranked chunk. Distance is a non-negative dissimilarity;
// lower means more relevant.
type SearchResult struct {
	Content      string  `json:"content"`
	CourseTitle  string  `json:"course_title"`
	LessonNumber int     `json:"lesson_number"`
	ChunkIndex   int     `json:"chunk_index"`
	Distance     float32 `json:"distance"`
}

// SearchOptions narrows a content search. Nil fields leave the corpus
// unfiltered in that dimension.
type SearchOptions struct {
	CourseTitle  *string
	LessonNumber *int
	Limit        *int
}

type CourseMatch struct {
	Title    string
	Distance float32
}

type LessonMeta struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

type CourseMeta struct {
	Title      string       `json:"title"`
	Instructor string       `json:"instructor"`
	Link       string       `json:"link"`
	Lessons    []LessonMeta `json:"lessons"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CatalogStore is the course-identity index: one entry per course, keyed by a
// title embedding.
type CatalogStore interface {
	// Resolve returns the nearest catalog entry, or nil when the catalog has
	// no entries at all.
	Resolve(ctx context.Context, vector []float32) (*CourseMatch, error)
	GetCourse(ctx context.Context, title string) (*CourseMeta, error)
}

type ChunkFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// ChunkStore is the content index: ranked nearest-neighbour search over course
// chunks, restricted by whatever filter fields are set.
type ChunkStore interface {
	Search(ctx context.Context, vector []float32, filter ChunkFilter, limit int) ([]SearchResult, error)
}

type Service struct {
	embedder Embedder
	catalog  CatalogStore
	chunks   ChunkStore
	logger   *QueryLogger

	maxResults int
	// maxDistance > 0 turns low-confidence resolutions into ErrNoMatch.
	// Zero keeps the permissive top-1 behaviour.
	maxDistance float64
}

func NewService(e Embedder, catalog CatalogStore, chunks ChunkStore, l *QueryLogger, maxResults int, maxDistance float64) *Service {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Service{
		embedder:    e,
		catalog:     catalog,
		chunks:      chunks,
		logger:      l,
		maxResults:  maxResults,
		maxDistance: maxDistance,
	}
}

// ResolveCourse fuzzy-matches a partial course name to its canonical title.
func (s *Service) ResolveCourse(ctx context.Context, name string) (string, error) {
	vec, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	match, err := s.catalog.Resolve(ctx, vec)
	if err != nil {
		return "", fmt.Errorf("catalog lookup: %w", err)
	}
	if match == nil {
		return "", ErrEmptyCatalog
	}
	if s.maxDistance > 0 && float64(match.Distance) > s.maxDistance {
		return "", fmt.Errorf("%w: best candidate %q at distance %.3f", ErrNoMatch, match.Title, match.Distance)
	}
	return match.Title, nil
}

// Search ranks chunks against the query. An empty result set is a valid
// outcome, not an error.
func (s *Service) Search(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	start := time.Now()

	limit := s.maxResults
	var filter ChunkFilter
	if opts != nil {
		if opts.Limit != nil {
			limit = *opts.Limit
		}
		if opts.CourseTitle != nil {
			filter.CourseTitle = *opts.CourseTitle
		}
		filter.LessonNumber = opts.LessonNumber
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.chunks.Search(ctx, vec, filter, limit)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      query,
			Course:     filter.CourseTitle,
			NumResults: len(results),
			Duration:   time.Since(start),
		})
	}
	return results, nil
}

// CourseOutline resolves a course name and returns its catalog identity
// (title, link, ordered lesson list).
func (s *Service) CourseOutline(ctx context.Context, name string) (*CourseMeta, error) {
	title, err := s.ResolveCourse(ctx, name)
	if err != nil {
		return nil, err
	}
	meta, err := s.catalog.GetCourse(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, name)
	}
	return meta, nil
}
