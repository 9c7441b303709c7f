package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorStore struct{ mock.Mock }

func (m *MockVectorStore) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func TestEmbedderConsumer_HandleMessage(t *testing.T) {
	payload := worker.ChunkEmbedPayload{
		CourseTitle:  "Course A",
		LessonNumber: 2,
		ChunkIndex:   7,
		Content:      "chunk text",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	t.Run("Embeds And Stores", func(t *testing.T) {
		e := new(MockEmbedder)
		s := new(MockVectorStore)
		e.On("Embed", mock.Anything, "chunk text").Return([]float32{0.1, 0.2}, nil)
		s.On("StoreChunk", mock.Anything, mock.MatchedBy(func(c worker.Chunk) bool {
			return c.CourseTitle == "Course A" && c.LessonNumber == 2 && c.ChunkIndex == 7 &&
				len(c.Vector) == 2
		})).Return(nil)

		consumer := worker.NewEmbedderConsumer(e, s)
		assert.NoError(t, consumer.HandleMessage(&nsq.Message{Body: body}))
		e.AssertExpectations(t)
		s.AssertExpectations(t)
	})

	t.Run("Empty Body Is Dropped", func(t *testing.T) {
		consumer := worker.NewEmbedderConsumer(new(MockEmbedder), new(MockVectorStore))
		assert.NoError(t, consumer.HandleMessage(&nsq.Message{Body: nil}))
	})

	t.Run("Invalid JSON Is A Poison Pill", func(t *testing.T) {
		e := new(MockEmbedder)
		consumer := worker.NewEmbedderConsumer(e, new(MockVectorStore))
		assert.NoError(t, consumer.HandleMessage(&nsq.Message{Body: []byte("{not json")}))
		e.AssertNotCalled(t, "Embed")
	})

	t.Run("Embed Failure Requeues", func(t *testing.T) {
		e := new(MockEmbedder)
		e.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

		consumer := worker.NewEmbedderConsumer(e, new(MockVectorStore))
		assert.Error(t, consumer.HandleMessage(&nsq.Message{Body: body}))
	})

	t.Run("Store Failure Requeues", func(t *testing.T) {
		e := new(MockEmbedder)
		s := new(MockVectorStore)
		e.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
		s.On("StoreChunk", mock.Anything, mock.Anything).Return(errors.New("weaviate down"))

		consumer := worker.NewEmbedderConsumer(e, s)
		assert.Error(t, consumer.HandleMessage(&nsq.Message{Body: body}))
	})
}
