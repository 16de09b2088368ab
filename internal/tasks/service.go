package tasks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskapp-backend/internal/ai"
	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
)

// Service applies the ownership rule on top of Store. Every method takes the
// caller explicitly; a task the caller may not see is reported as
// apperr.ErrTaskNotFound, exactly like a missing one.
type Service struct {
	Store   *Store
	Advisor ai.Completer
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewService(store *Store, advisor ai.Completer, logger *slog.Logger) *Service {
	return &Service{Store: store, Advisor: advisor, Logger: logger, Now: time.Now}
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (Task, error) {
	t, err := NewTask(in, caller, s.Now())
	if err != nil {
		return Task{}, err
	}
	if err := s.Store.Insert(ctx, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// List returns the caller's own tasks, or the public tasks for anonymous callers.
func (s *Service) List(ctx context.Context, caller auth.Identity) ([]Task, error) {
	return s.Store.ListByOwner(ctx, OwnerFor(caller))
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (Task, error) {
	t, err := s.Store.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !t.Owner.Allows(caller) {
		return Task{}, apperr.ErrTaskNotFound
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, in UpdateInput) (Task, error) {
	t, err := s.Get(ctx, caller, id)
	if err != nil {
		return Task{}, err
	}
	if err := t.Apply(in); err != nil {
		return Task{}, err
	}
	if err := s.Store.Save(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// SetState is the transition command used both for direct user edits and
// for applying a recommendation. It returns the task and its previous state.
func (s *Service) SetState(ctx context.Context, caller auth.Identity, id int64, next State) (Task, State, error) {
	t, err := s.Get(ctx, caller, id)
	if err != nil {
		return Task{}, "", err
	}
	prev := t.State
	if err := t.Transition(next); err != nil {
		return Task{}, "", err
	}
	if err := s.Store.Save(ctx, t); err != nil {
		return Task{}, "", err
	}
	return t, prev, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

// -------------------------------
// SUBTASKS
// -------------------------------

type GenerateInput struct {
	TaskTitle       *string `json:"taskTitle"`
	TaskDescription *string `json:"taskDescription"`
}

type SubtaskInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (s *Service) Subtasks(ctx context.Context, caller auth.Identity, taskID int64) ([]Subtask, error) {
	if _, err := s.Get(ctx, caller, taskID); err != nil {
		return nil, err
	}
	return s.Store.ListSubtasks(ctx, taskID)
}

// GenerateSubtasks asks the advisory service for three subtasks and stores
// them. Any advisory problem falls back to fixed preparation/execution/check
// titles; generation itself never fails because of the advisory service.
func (s *Service) GenerateSubtasks(ctx context.Context, caller auth.Identity, taskID int64, in GenerateInput) ([]Subtask, error) {
	t, err := s.Get(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	title := t.Title
	if in.TaskTitle != nil && strings.TrimSpace(*in.TaskTitle) != "" {
		title = strings.TrimSpace(*in.TaskTitle)
	}
	description := t.Description
	if in.TaskDescription != nil {
		description = *in.TaskDescription
	}

	titles := s.proposeSubtasks(ctx, taskID, title, description)
	return s.Store.InsertSubtasks(ctx, taskID, titles, s.Now())
}

func (s *Service) proposeSubtasks(ctx context.Context, taskID int64, title, description string) []string {
	raw, err := s.Advisor.Complete(ctx, ai.BuildSubtaskPrompt(title, description))
	if err == nil {
		var titles []string
		titles, err = ai.ParseSubtaskTitles(raw)
		if err == nil {
			return titles
		}
	}

	s.Logger.WarnContext(ctx, "subtask generation fell back to defaults",
		"task_id", taskID, "reason", string(ai.ReasonOf(err)), "error", err)
	return FallbackSubtaskTitles(title)
}

func FallbackSubtaskTitles(title string) []string {
	return []string{title + "の準備", title + "の実行", title + "の確認"}
}

func (s *Service) UpdateSubtask(ctx context.Context, caller auth.Identity, taskID, subtaskID int64, in SubtaskInput) (Subtask, error) {
	if _, err := s.Get(ctx, caller, taskID); err != nil {
		return Subtask{}, err
	}
	st, err := s.Store.GetSubtask(ctx, taskID, subtaskID)
	if err != nil {
		return Subtask{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Subtask{}, apperr.InvalidRequest("title is required")
	}
	st.Title = title
	st.Completed = in.Completed

	if err := s.Store.SaveSubtask(ctx, st); err != nil {
		return Subtask{}, err
	}
	return st, nil
}

func (s *Service) DeleteSubtask(ctx context.Context, caller auth.Identity, taskID, subtaskID int64) error {
	if _, err := s.Get(ctx, caller, taskID); err != nil {
		return err
	}
	return s.Store.DeleteSubtask(ctx, taskID, subtaskID)
}
