package tasks

import (
	"strings"
	"time"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
)

type CreateInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *Date   `json:"dueDate"`
	Priority    *string `json:"priority"`
}

// UpdateInput replaces the editable fields of a task. Completed is optional
// and is folded into the state so that completed mirrors DONE.
type UpdateInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *Date   `json:"dueDate"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// NewTask starts a task in PENDING, owned by its creator (or public).
func NewTask(in CreateInput, caller auth.Identity, now time.Time) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, apperr.InvalidRequest("title is required")
	}

	t := Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Priority:    normalizePriority(in.Priority),
		Owner:       OwnerFor(caller),
		CreatedAt:   now.UTC(),
	}
	t.setState(StatePending)
	return t, nil
}

// Transition moves the task to next. Every pair of states is allowed.
func (t *Task) Transition(next State) error {
	if !next.Valid() {
		return apperr.InvalidState("state must be one of PENDING, EXECUTING, DONE")
	}
	t.setState(next)
	return nil
}

func (t *Task) Apply(in UpdateInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperr.InvalidRequest("title is required")
	}

	t.Title = title
	t.Description = strings.TrimSpace(in.Description)
	t.DueDate = in.DueDate
	t.Priority = normalizePriority(in.Priority)

	if in.Completed != nil {
		switch {
		case *in.Completed:
			t.setState(StateDone)
		case t.State == StateDone:
			t.setState(StatePending)
		}
	}
	return nil
}

func (t *Task) setState(s State) {
	t.State = s
	t.Completed = s == StateDone
}

// normalizePriority keeps the value verbatim; blank means absent.
func normalizePriority(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := *p
	return &v
}
