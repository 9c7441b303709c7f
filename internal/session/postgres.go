package session

import (
	"context"
	"database/sql"
)

// PostgresStore persists turns across restarts. Reads return the newest
// `capacity` exchanges in chronological order; appends prune anything older.
type PostgresStore struct {
	db       *sql.DB
	capacity int
}

func NewPostgresStore(db *sql.DB, capacity int) *PostgresStore {
	return &PostgresStore{db: db, capacity: capacity}
}

func (s *PostgresStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	query := `
		SELECT query, answer FROM (
			SELECT id, query, answer FROM conversation_turns
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, s.capacity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Query, &t.Answer); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *PostgresStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `INSERT INTO conversation_turns (session_id, query, answer) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, sessionID, turn.Query, turn.Answer); err != nil {
		return err
	}

	prune := `
		DELETE FROM conversation_turns
		WHERE session_id = $1 AND id NOT IN (
			SELECT id FROM conversation_turns
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		)
	`
	if _, err := tx.ExecContext(ctx, prune, sessionID, s.capacity); err != nil {
		return err
	}

	return tx.Commit()
}
