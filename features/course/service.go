package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/ingest"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/middleware"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

type Repository interface {
	Save(ctx context.Context, c *Course) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Count(ctx context.Context) (int, error)
	ListTitles(ctx context.Context) ([]string, error)
}

// CatalogWriter adds one identity entry per course, vectorized by title.
type CatalogWriter interface {
	AddCourse(ctx context.Context, meta retrieval.CourseMeta, vec []float32) error
}

type ChunkWriter interface {
	StoreChunk(ctx context.Context, chunk worker.Chunk) error
}

// EventPublisher hands chunk embedding off to the async worker.
type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo      Repository
	embedder  retrieval.Embedder
	catalog   CatalogWriter
	chunks    ChunkWriter
	publisher EventPublisher
	topic     string

	chunkSize int
	overlap   int
}

func NewService(repo Repository, embedder retrieval.Embedder, catalog CatalogWriter, chunks ChunkWriter, chunkSize, overlap int) *Service {
	return &Service{
		repo:      repo,
		embedder:  embedder,
		catalog:   catalog,
		chunks:    chunks,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// WithPublisher switches chunk embedding to async: chunks are published to
// the given topic instead of being embedded inline.
func (s *Service) WithPublisher(p EventPublisher, topic string) *Service {
	s.publisher = p
	s.topic = topic
	return s
}

type IngestStats struct {
	CoursesAdded  int
	CoursesKnown  int
	DocumentsBad  int
	ChunksWritten int
}

// IngestDirectory loads every .txt course document under dir. Malformed
// documents are logged and skipped; courses whose title already exists are
// skipped without re-chunking. Returns counts for the startup log line.
func (s *Service) IngestDirectory(ctx context.Context, dir string) (*IngestStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	stats := &IngestStats{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := s.ingestFile(ctx, path, stats); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", entry.Name(), err)
		}
	}
	return stats, nil
}

func (s *Service) ingestFile(ctx context.Context, path string, stats *IngestStats) error {
	f, err := os.Open(path)
	if err != nil {
		slog.WarnContext(ctx, "skipping unreadable document", "path", path, "error", err)
		stats.DocumentsBad++
		return nil
	}
	defer f.Close()

	doc, err := ingest.Parse(f)
	if err != nil {
		var perr *ingest.ParseError
		if errors.As(err, &perr) {
			slog.WarnContext(ctx, "skipping malformed document", "path", path, "reason", perr.Reason)
			stats.DocumentsBad++
			return nil
		}
		return err
	}

	exists, err := s.repo.ExistsByTitle(ctx, doc.Course.Title)
	if err != nil {
		return fmt.Errorf("check existing course: %w", err)
	}
	if exists {
		slog.InfoContext(ctx, "course already ingested", "title", doc.Course.Title)
		stats.CoursesKnown++
		return nil
	}

	if err := s.addCourse(ctx, doc); err != nil {
		return err
	}
	stats.CoursesAdded++

	written, err := s.writeChunks(ctx, doc)
	if err != nil {
		return err
	}
	stats.ChunksWritten += written

	slog.InfoContext(ctx, "course ingested",
		"title", doc.Course.Title, "lessons", len(doc.Bodies), "chunks", written)
	return nil
}

func (s *Service) addCourse(ctx context.Context, doc *ingest.Document) error {
	vec, err := s.embedder.Embed(ctx, doc.Course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	meta := retrieval.CourseMeta{
		Title:      doc.Course.Title,
		Instructor: doc.Course.Instructor,
		Link:       doc.Course.Link,
	}
	titles := make([]string, 0, len(doc.Course.Lessons))
	links := make([]string, 0, len(doc.Course.Lessons))
	for _, l := range doc.Course.Lessons {
		meta.Lessons = append(meta.Lessons, retrieval.LessonMeta{Number: l.Number, Title: l.Title, Link: l.Link})
		titles = append(titles, l.Title)
		links = append(links, l.Link)
	}

	if err := s.catalog.AddCourse(ctx, meta, vec); err != nil {
		return fmt.Errorf("add catalog entry: %w", err)
	}
	return s.repo.Save(ctx, &Course{
		ID:           uuid.New(),
		Title:        doc.Course.Title,
		Instructor:   doc.Course.Instructor,
		Link:         doc.Course.Link,
		LessonTitles: titles,
		LessonLinks:  links,
	})
}

func (s *Service) writeChunks(ctx context.Context, doc *ingest.Document) (int, error) {
	chunks := doc.Chunks(s.chunkSize, s.overlap)
	for _, c := range chunks {
		if s.publisher != nil {
			if err := s.publishChunk(ctx, c); err != nil {
				return 0, err
			}
			continue
		}
		vec, err := s.embedder.Embed(ctx, c.Content)
		if err != nil {
			return 0, fmt.Errorf("embed chunk: %w", err)
		}
		err = s.chunks.StoreChunk(ctx, worker.Chunk{
			Content:      c.Content,
			Vector:       vec,
			CourseTitle:  c.CourseTitle,
			LessonNumber: c.LessonNumber,
			ChunkIndex:   c.ChunkIndex,
		})
		if err != nil {
			return 0, fmt.Errorf("store chunk: %w", err)
		}
	}
	return len(chunks), nil
}

func (s *Service) publishChunk(ctx context.Context, c ingest.Chunk) error {
	payload := worker.ChunkEmbedPayload{
		CourseTitle:   c.CourseTitle,
		LessonNumber:  c.LessonNumber,
		ChunkIndex:    c.ChunkIndex,
		Content:       c.Content,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal chunk event: %w", err)
	}
	if err := s.publisher.Publish(s.topic, body); err != nil {
		return fmt.Errorf("publish chunk event: %w", err)
	}
	return nil
}
