package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ExamSession is an exam_sessions row
type ExamSession struct {
	ID      string `db:"id" json:"id"`
	Session string `db:"session" json:"session"`
	Year    int    `db:"year" json:"year"`
}

// ListExamSessions returns all sessions, most recent year first
func (db *DB) ListExamSessions(ctx context.Context) ([]ExamSession, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	sessions := []ExamSession{}
	if err := db.SelectContext(ctx, &sessions, `
		SELECT id, session, year FROM exam_sessions ORDER BY year DESC, session DESC
	`); err != nil {
		return nil, fmt.Errorf("failed to list exam sessions: %w", err)
	}
	return sessions, nil
}

// EnsureExamSession returns the id of the session, creating it if missing
func (db *DB) EnsureExamSession(ctx context.Context, session string, year int) (string, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var id string
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &id, `
			SELECT id FROM exam_sessions WHERE session = ? AND year = ? LIMIT 1
		`, session, year)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to find exam session: %w", err)
		}

		id = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO exam_sessions (id, session, year) VALUES (?, ?, ?)
		`, id, session, year); err != nil {
			return fmt.Errorf("failed to create exam session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
