package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskapp-backend/internal/apperr"
)

// Store persists tasks and subtasks. Ownership is not checked here.
type Store struct {
	DB *sql.DB
}

func NewStore(dbx *sql.DB) *Store {
	return &Store{DB: dbx}
}

const taskColumns = `id, title, description, due_date, priority, state, completed, user_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t        Task
		due      sql.NullTime
		priority sql.NullString
		userID   sql.NullInt64
		state    string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &priority, &state, &t.Completed, &userID, &t.CreatedAt); err != nil {
		return Task{}, err
	}

	t.State = State(state)
	if due.Valid {
		d := NewDate(due.Time.Year(), due.Time.Month(), due.Time.Day())
		t.DueDate = &d
	}
	if priority.Valid {
		p := priority.String
		t.Priority = &p
	}
	if userID.Valid {
		t.Owner = Owned(userID.Int64)
	} else {
		t.Owner = Public()
	}
	return t, nil
}

func taskArgs(t Task) (due, priority, userID any) {
	if t.DueDate != nil {
		due = t.DueDate.Time
	}
	if t.Priority != nil {
		priority = *t.Priority
	}
	if uid, ok := t.Owner.UserID(); ok {
		userID = uid
	}
	return
}

func (s *Store) Insert(ctx context.Context, t *Task) error {
	due, priority, userID := taskArgs(*t)
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, due_date, priority, state, completed, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, t.Title, t.Description, due, priority, string(t.State), t.Completed, userID, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Get returns apperr.ErrTaskNotFound when no row matches.
func (s *Store) Get(ctx context.Context, id int64) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, apperr.ErrTaskNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("load task %d: %w", id, err)
	}
	return t, nil
}

// ListByOwner returns the tasks of one owner, newest first. Public lists
// guest tasks.
func (s *Store) ListByOwner(ctx context.Context, owner Owner) ([]Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if uid, ok := owner.UserID(); ok {
		rows, err = s.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id DESC`, uid)
	} else {
		rows, err = s.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id IS NULL ORDER BY id DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Save writes the mutable fields of t. The owner column is never updated.
func (s *Store) Save(ctx context.Context, t Task) error {
	due, priority, _ := taskArgs(t)
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4, state = $5, completed = $6
		WHERE id = $7
	`, t.Title, t.Description, due, priority, string(t.State), t.Completed, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its subtasks. Decision logs stay.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrTaskNotFound
	}
	return tx.Commit()
}

// -------------------------------
// SUBTASKS
// -------------------------------

func (s *Store) ListSubtasks(ctx context.Context, taskID int64) ([]Subtask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, task_id, title, completed, created_at
		FROM subtasks
		WHERE task_id = $1
		ORDER BY id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	result := []Subtask{}
	for rows.Next() {
		var st Subtask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// InsertSubtasks appends one subtask per title in a single transaction.
func (s *Store) InsertSubtasks(ctx context.Context, taskID int64, titles []string, now time.Time) ([]Subtask, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	created := make([]Subtask, 0, len(titles))
	for _, title := range titles {
		st := Subtask{TaskID: taskID, Title: title, CreatedAt: now.UTC()}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO subtasks (task_id, title, completed, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, st.TaskID, st.Title, st.Completed, st.CreatedAt).Scan(&st.ID)
		if err != nil {
			return nil, fmt.Errorf("insert subtask: %w", err)
		}
		created = append(created, st)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// GetSubtask returns apperr.ErrSubtaskNotFound unless the subtask belongs to taskID.
func (s *Store) GetSubtask(ctx context.Context, taskID, subtaskID int64) (Subtask, error) {
	var st Subtask
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, task_id, title, completed, created_at
		FROM subtasks
		WHERE id = $1 AND task_id = $2
	`, subtaskID, taskID).Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subtask{}, apperr.ErrSubtaskNotFound
	}
	if err != nil {
		return Subtask{}, fmt.Errorf("load subtask %d: %w", subtaskID, err)
	}
	return st, nil
}

func (s *Store) SaveSubtask(ctx context.Context, st Subtask) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE subtasks SET title = $1, completed = $2 WHERE id = $3 AND task_id = $4
	`, st.Title, st.Completed, st.ID, st.TaskID)
	if err != nil {
		return fmt.Errorf("update subtask %d: %w", st.ID, err)
	}
	return nil
}

func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM subtasks WHERE id = $1 AND task_id = $2`, subtaskID, taskID)
	if err != nil {
		return fmt.Errorf("delete subtask %d: %w", subtaskID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrSubtaskNotFound
	}
	return nil
}
