// Package auditlog stores every decision returned for a task. Rows are
// append-only and keep no foreign key, so they outlive their task.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Entry struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"taskId"`
	SuggestedState string    `json:"suggestedState"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Appender is the write side used by the decision engine.
type Appender interface {
	Append(ctx context.Context, e Entry) (Entry, error)
}

type Store struct {
	DB *sql.DB
}

func NewStore(dbx *sql.DB) *Store {
	return &Store{DB: dbx}
}

func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO ai_decision_logs (task_id, suggested_state, reason, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, e.TaskID, e.SuggestedState, e.Reason, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("append decision log: %w", err)
	}
	return e, nil
}

// ListByTask returns the entries of one task, newest first.
func (s *Store) ListByTask(ctx context.Context, taskID int64) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, task_id, suggested_state, reason, created_at
		FROM ai_decision_logs
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list decision logs: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.SuggestedState, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
