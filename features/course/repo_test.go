package course

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := &Course{
		ID:           uuid.New(),
		Title:        "Course A",
		Instructor:   "Jane",
		Link:         "https://example.com/a",
		LessonTitles: []string{"Intro", "Deep Dive"},
		LessonLinks:  []string{"l0", "l1"},
	}

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(c.ID, c.Title, c.Instructor, c.Link, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Save(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ExistsByTitle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Course A").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresRepository(db)
	exists, err := repo.ExistsByTitle(context.Background(), "Course A")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewPostgresRepository(db)
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPostgresRepository_ListTitles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT title FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("A").AddRow("B"))

	repo := NewPostgresRepository(db)
	titles, err := repo.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles)
}

func TestPostgresRepository_GetByTitle_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title, instructor").
		WithArgs("Ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewPostgresRepository(db)
	c, err := repo.GetByTitle(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.Nil(t, c)
}
