package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskapp-backend/internal/ai"
	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/db/dbtest"
)

type stubAdvisor struct {
	text string
	err  error
}

func (s stubAdvisor) Complete(context.Context, ai.Prompt) (string, error) {
	return s.text, s.err
}

func newTestService(t *testing.T, adv ai.Completer) *Service {
	t.Helper()
	svc := NewService(NewStore(dbtest.Open(t)), adv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	return svc
}

func TestService_RoundTrip(t *testing.T) {
	svc := newTestService(t, stubAdvisor{})
	ctx := context.Background()
	due := NewDate(2026, time.March, 1)
	user := auth.User(1)

	created, err := svc.Create(ctx, user, CreateInput{Title: "report", Description: "q1", DueDate: &due, Priority: strPtr("high")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, user, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "report" || got.Description != "q1" || got.State != StatePending {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-03-01" {
		t.Fatalf("due date lost: %v", got.DueDate)
	}
	if got.Priority == nil || *got.Priority != "high" {
		t.Fatalf("priority lost: %v", got.Priority)
	}
	if !got.CreatedAt.Equal(svc.Now()) {
		t.Fatalf("created_at %s", got.CreatedAt)
	}

	updated, prev, err := svc.SetState(ctx, user, created.ID, StateDone)
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if prev != StatePending || !updated.Completed {
		t.Fatalf("unexpected transition prev=%s task=%+v", prev, updated)
	}

	reloaded, _ := svc.Get(ctx, user, created.ID)
	if reloaded.State != StateDone || !reloaded.Completed {
		t.Fatalf("state not persisted: %+v", reloaded)
	}
}

func TestService_Ownership(t *testing.T) {
	svc := newTestService(t, stubAdvisor{})
	ctx := context.Background()

	owned, _ := svc.Create(ctx, auth.User(1), CreateInput{Title: "mine"})
	public, _ := svc.Create(ctx, auth.Anonymous(), CreateInput{Title: "guest"})

	for _, caller := range []auth.Identity{auth.User(2), auth.Anonymous()} {
		if _, err := svc.Get(ctx, caller, owned.ID); !errors.Is(err, apperr.ErrTaskNotFound) {
			t.Fatalf("%s: expected not found, got %v", caller, err)
		}
		if err := svc.Delete(ctx, caller, owned.ID); !errors.Is(err, apperr.ErrTaskNotFound) {
			t.Fatalf("%s: delete should be not found, got %v", caller, err)
		}
		if _, err := svc.Get(ctx, caller, public.ID); err != nil {
			t.Fatalf("%s: public task should be visible: %v", caller, err)
		}
	}

	if _, err := svc.Get(ctx, auth.User(1), 999); !errors.Is(err, apperr.ErrTaskNotFound) {
		t.Fatalf("expected not found for missing id, got %v", err)
	}

	mine, _ := svc.List(ctx, auth.User(1))
	if len(mine) != 1 || mine[0].ID != owned.ID {
		t.Fatalf("user list: %+v", mine)
	}
	guest, _ := svc.List(ctx, auth.Anonymous())
	if len(guest) != 1 || guest[0].ID != public.ID {
		t.Fatalf("anonymous list: %+v", guest)
	}
}

func TestService_DeleteCascadesSubtasks(t *testing.T) {
	svc := newTestService(t, stubAdvisor{err: ai.ErrUnavailable})
	ctx := context.Background()

	tk, _ := svc.Create(ctx, auth.Anonymous(), CreateInput{Title: "a"})
	if _, err := svc.GenerateSubtasks(ctx, auth.Anonymous(), tk.ID, GenerateInput{}); err != nil {
		t.Fatalf("GenerateSubtasks: %v", err)
	}
	if err := svc.Delete(ctx, auth.Anonymous(), tk.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var n int
	_ = svc.Store.DB.QueryRow(`SELECT COUNT(*) FROM subtasks WHERE task_id = $1`, tk.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected subtasks removed, %d left", n)
	}
}

func TestGenerateSubtasks(t *testing.T) {
	cases := []struct {
		name string
		adv  stubAdvisor
		want []string
	}{
		{"advisory json", stubAdvisor{text: `["調べる","書く","送る"]`}, []string{"調べる", "書く", "送る"}},
		{"advisory down", stubAdvisor{err: &ai.Failure{Reason: ai.ReasonTransport}}, []string{"掃除の準備", "掃除の実行", "掃除の確認"}},
		{"advisory empty", stubAdvisor{text: "[]"}, []string{"掃除の準備", "掃除の実行", "掃除の確認"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, tc.adv)
			ctx := context.Background()
			tk, _ := svc.Create(ctx, auth.Anonymous(), CreateInput{Title: "掃除"})

			created, err := svc.GenerateSubtasks(ctx, auth.Anonymous(), tk.ID, GenerateInput{})
			if err != nil {
				t.Fatalf("GenerateSubtasks: %v", err)
			}
			if len(created) != len(tc.want) {
				t.Fatalf("got %d subtasks", len(created))
			}
			for i, st := range created {
				if st.Title != tc.want[i] || st.TaskID != tk.ID || st.Completed {
					t.Fatalf("subtask %d = %+v", i, st)
				}
			}
		})
	}
}

func TestSubtaskUpdateAndDelete(t *testing.T) {
	svc := newTestService(t, stubAdvisor{text: `["a","b","c"]`})
	ctx := context.Background()
	owner := auth.User(5)

	tk, _ := svc.Create(ctx, owner, CreateInput{Title: "x"})
	other, _ := svc.Create(ctx, owner, CreateInput{Title: "y"})
	created, _ := svc.GenerateSubtasks(ctx, owner, tk.ID, GenerateInput{})

	st, err := svc.UpdateSubtask(ctx, owner, tk.ID, created[0].ID, SubtaskInput{Title: "a2", Completed: true})
	if err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	if st.Title != "a2" || !st.Completed {
		t.Fatalf("unexpected subtask %+v", st)
	}

	if _, err := svc.UpdateSubtask(ctx, owner, other.ID, created[0].ID, SubtaskInput{Title: "z"}); !errors.Is(err, apperr.ErrSubtaskNotFound) {
		t.Fatalf("subtask under wrong task should be not found, got %v", err)
	}
	if _, err := svc.UpdateSubtask(ctx, auth.User(6), tk.ID, created[0].ID, SubtaskInput{Title: "z"}); !errors.Is(err, apperr.ErrTaskNotFound) {
		t.Fatalf("foreign caller should get task not found, got %v", err)
	}

	if err := svc.DeleteSubtask(ctx, owner, tk.ID, created[1].ID); err != nil {
		t.Fatalf("DeleteSubtask: %v", err)
	}
	if err := svc.DeleteSubtask(ctx, owner, tk.ID, created[1].ID); !errors.Is(err, apperr.ErrSubtaskNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}

	left, _ := svc.Subtasks(ctx, owner, tk.ID)
	if len(left) != 2 {
		t.Fatalf("expected 2 subtasks left, got %d", len(left))
	}
}
