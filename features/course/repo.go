package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (id, title, instructor, link, lesson_titles, lesson_links)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (title) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Instructor, c.Link,
		pq.Array(c.LessonTitles), pq.Array(c.LessonLinks),
	)
	return err
}

func (r *PostgresRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE title = $1)`, title,
	).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) GetByTitle(ctx context.Context, title string) (*Course, error) {
	var c Course
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, instructor, link, lesson_titles, lesson_links, created_at
		FROM courses WHERE title = $1`, title,
	).Scan(&c.ID, &c.Title, &c.Instructor, &c.Link,
		pq.Array(&c.LessonTitles), pq.Array(&c.LessonLinks), &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
