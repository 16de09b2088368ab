package decision

import (
	"context"

	"taskapp-backend/internal/auditlog"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/tasks"
)

// Service puts the task ownership check in front of the engine and the log.
type Service struct {
	Tasks  *tasks.Service
	Engine *Engine
	Logs   *auditlog.Store
}

func NewService(taskSvc *tasks.Service, engine *Engine, logs *auditlog.Store) *Service {
	return &Service{Tasks: taskSvc, Engine: engine, Logs: logs}
}

// Decide fails only when the task is missing or not visible to caller.
// The task itself is never modified.
func (s *Service) Decide(ctx context.Context, caller auth.Identity, taskID int64) (Outcome, error) {
	t, err := s.Tasks.Get(ctx, caller, taskID)
	if err != nil {
		return Outcome{}, err
	}
	return s.Engine.Decide(ctx, t), nil
}

func (s *Service) ListLogs(ctx context.Context, caller auth.Identity, taskID int64) ([]auditlog.Entry, error) {
	if _, err := s.Tasks.Get(ctx, caller, taskID); err != nil {
		return nil, err
	}
	return s.Logs.ListByTask(ctx, taskID)
}
