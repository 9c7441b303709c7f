package course

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Save(ctx context.Context, c *Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	args := m.Called(ctx, title)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListTitles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockCatalogWriter struct{ mock.Mock }

func (m *MockCatalogWriter) AddCourse(ctx context.Context, meta retrieval.CourseMeta, vec []float32) error {
	args := m.Called(ctx, meta, vec)
	return args.Error(0)
}

type MockChunkWriter struct{ mock.Mock }

func (m *MockChunkWriter) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

const courseDoc = `Course Title: Course A
Course Link: https://example.com/a
Course Instructor: Jane

Lesson 0: Intro
Welcome. This is the intro lesson.

Lesson 1: Deep Dive
Now we go deeper. Much deeper than before.
`

func TestService_IngestDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("Ingests New Course Inline", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "course_a.txt", courseDoc)

		repo := new(MockRepository)
		embedder := new(MockEmbedder)
		catalog := new(MockCatalogWriter)
		chunks := new(MockChunkWriter)

		repo.On("ExistsByTitle", mock.Anything, "Course A").Return(false, nil)
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1}, nil)
		catalog.On("AddCourse", mock.Anything, mock.MatchedBy(func(meta retrieval.CourseMeta) bool {
			return meta.Title == "Course A" && len(meta.Lessons) == 2
		}), mock.Anything).Return(nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(c *Course) bool {
			return c.Title == "Course A" && len(c.LessonTitles) == 2
		})).Return(nil)
		chunks.On("StoreChunk", mock.Anything, mock.Anything).Return(nil)

		svc := NewService(repo, embedder, catalog, chunks, 800, 100)
		stats, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.CoursesAdded)
		assert.Equal(t, 2, stats.ChunksWritten)
		catalog.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Skips Existing Course", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "course_a.txt", courseDoc)

		repo := new(MockRepository)
		repo.On("ExistsByTitle", mock.Anything, "Course A").Return(true, nil)
		catalog := new(MockCatalogWriter)
		chunks := new(MockChunkWriter)

		svc := NewService(repo, new(MockEmbedder), catalog, chunks, 800, 100)
		stats, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.CoursesAdded)
		assert.Equal(t, 1, stats.CoursesKnown)
		catalog.AssertNotCalled(t, "AddCourse")
		chunks.AssertNotCalled(t, "StoreChunk")
	})

	t.Run("Skips Malformed Document", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "bad.txt", "this has no header at all\n")
		writeDoc(t, dir, "good.txt", courseDoc)

		repo := new(MockRepository)
		embedder := new(MockEmbedder)
		catalog := new(MockCatalogWriter)
		chunks := new(MockChunkWriter)

		repo.On("ExistsByTitle", mock.Anything, "Course A").Return(false, nil)
		embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
		catalog.On("AddCourse", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		chunks.On("StoreChunk", mock.Anything, mock.Anything).Return(nil)

		svc := NewService(repo, embedder, catalog, chunks, 800, 100)
		stats, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.DocumentsBad)
		assert.Equal(t, 1, stats.CoursesAdded)
	})

	t.Run("Ignores Non Text Files", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "notes.md", "# not a course doc")

		svc := NewService(new(MockRepository), new(MockEmbedder), new(MockCatalogWriter), new(MockChunkWriter), 800, 100)
		stats, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Zero(t, stats.CoursesAdded)
		assert.Zero(t, stats.DocumentsBad)
	})

	t.Run("Publishes Chunk Events When Async", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "course_a.txt", courseDoc)

		repo := new(MockRepository)
		embedder := new(MockEmbedder)
		catalog := new(MockCatalogWriter)
		chunks := new(MockChunkWriter)
		pub := new(MockPublisher)

		repo.On("ExistsByTitle", mock.Anything, "Course A").Return(false, nil)
		embedder.On("Embed", mock.Anything, "Course A").Return([]float32{1}, nil)
		catalog.On("AddCourse", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		pub.On("Publish", "ingest.embed", mock.MatchedBy(func(b []byte) bool {
			var p worker.ChunkEmbedPayload
			if err := json.Unmarshal(b, &p); err != nil {
				return false
			}
			return p.CourseTitle == "Course A" && p.Content != ""
		})).Return(nil).Times(2)

		svc := NewService(repo, embedder, catalog, chunks, 800, 100).WithPublisher(pub, "ingest.embed")
		stats, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.ChunksWritten)
		chunks.AssertNotCalled(t, "StoreChunk")
		embedder.AssertNumberOfCalls(t, "Embed", 1)
		pub.AssertExpectations(t)
	})

	t.Run("Missing Directory Is An Error", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockEmbedder), new(MockCatalogWriter), new(MockChunkWriter), 800, 100)
		_, err := svc.IngestDirectory(ctx, "/nonexistent/docs")
		assert.Error(t, err)
	})
}
