package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
)

func TestOutlineTool_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Formats Outline", func(t *testing.T) {
		searcher := &MockSearcher{}
		searcher.On("CourseOutline", mock.Anything, "compy").Return(&retrieval.CourseMeta{
			Title:      "Building Toward Computer Use",
			Instructor: "Colt Steele",
			Link:       "https://example.com/c",
			Lessons: []retrieval.LessonMeta{
				{Number: 0, Title: "Introduction"},
				{Number: 1, Title: "Getting Started"},
			},
		}, nil)

		tool := NewOutlineTool(searcher)
		res, err := tool.Execute(ctx, map[string]any{"course_name": "compy"})
		require.NoError(t, err)

		assert.Equal(t,
			"Course: Building Toward Computer Use\n"+
				"Course Link: https://example.com/c\n"+
				"Instructor: Colt Steele\n"+
				"Lessons (2):\n"+
				"  0. Introduction\n"+
				"  1. Getting Started",
			res.Text)
		require.Len(t, res.Sources, 1)
		assert.Equal(t, "Building Toward Computer Use", res.Sources[0].CourseTitle)
		assert.Nil(t, res.Sources[0].LessonNumber)
	})

	t.Run("No Match Yields Friendly Text", func(t *testing.T) {
		searcher := &MockSearcher{}
		searcher.On("CourseOutline", mock.Anything, "ghost").Return(nil, retrieval.ErrNoMatch)

		tool := NewOutlineTool(searcher)
		res, err := tool.Execute(ctx, map[string]any{"course_name": "ghost"})
		require.NoError(t, err)
		assert.Equal(t, `No course found matching "ghost".`, res.Text)
		assert.Empty(t, res.Sources)
	})

	t.Run("Missing Argument", func(t *testing.T) {
		tool := NewOutlineTool(&MockSearcher{})
		_, err := tool.Execute(ctx, map[string]any{})
		assert.Error(t, err)
	})
}
