package course_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolofj/starting-ragchatbot-codebase/features/course"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/testutils"
)

func TestCourseRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := course.NewPostgresRepository(s.DB)
	ctx := context.Background()

	c := &course.Course{
		ID:           uuid.New(),
		Title:        "Building Toward Computer Use",
		Instructor:   "Colt Steele",
		Link:         "https://example.com/c",
		LessonTitles: []string{"Introduction", "Getting Started"},
		LessonLinks:  []string{"https://example.com/l0", "https://example.com/l1"},
	}
	require.NoError(t, repo.Save(ctx, c))

	exists, err := repo.ExistsByTitle(ctx, c.Title)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByTitle(ctx, "Unknown")
	require.NoError(t, err)
	assert.False(t, exists)

	// Duplicate titles are silently ignored, the first write wins.
	dup := *c
	dup.ID = uuid.New()
	dup.Instructor = "Someone Else"
	require.NoError(t, repo.Save(ctx, &dup))

	got, err := repo.GetByTitle(ctx, c.Title)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Colt Steele", got.Instructor)
	assert.Equal(t, c.LessonTitles, got.LessonTitles)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	titles, err := repo.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{c.Title}, titles)
}
