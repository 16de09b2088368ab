package tasks

import (
	"errors"
	"testing"
	"time"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*3600))

	tk, err := NewTask(CreateInput{Title: "  buy milk ", Priority: strPtr("  ")}, auth.User(3), now)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if tk.Title != "buy milk" || tk.State != StatePending || tk.Completed {
		t.Fatalf("unexpected task %+v", tk)
	}
	if tk.Priority != nil {
		t.Fatalf("blank priority should be absent, got %q", *tk.Priority)
	}
	if uid, ok := tk.Owner.UserID(); !ok || uid != 3 {
		t.Fatalf("expected owner 3, got %v %v", uid, ok)
	}
	if tk.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at should be UTC")
	}

	guest, _ := NewTask(CreateInput{Title: "x", Priority: strPtr("High")}, auth.Anonymous(), now)
	if guest.Owner.Kind() != OwnerPublic {
		t.Fatal("anonymous task should be public")
	}
	if *guest.Priority != "High" {
		t.Fatalf("priority must be kept verbatim, got %q", *guest.Priority)
	}

	if _, err := NewTask(CreateInput{Title: " "}, auth.Anonymous(), now); !errors.Is(err, apperr.InvalidRequest("")) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestTransition_CompletedMirrorsDone(t *testing.T) {
	seqs := [][]State{
		{StateExecuting, StateDone, StatePending},
		{StateDone, StateExecuting, StateDone},
		{StatePending, StatePending, StateDone, StateDone},
		{StateDone, StatePending, StateExecuting},
	}
	for _, seq := range seqs {
		tk := Task{State: StatePending}
		for _, next := range seq {
			if err := tk.Transition(next); err != nil {
				t.Fatalf("Transition(%s): %v", next, err)
			}
			if tk.State != next {
				t.Fatalf("expected %s, got %s", next, tk.State)
			}
			if tk.Completed != (next == StateDone) {
				t.Fatalf("completed=%v in state %s", tk.Completed, next)
			}
		}
	}
}

func TestTransition_RejectsUnknownState(t *testing.T) {
	tk := Task{State: StateExecuting}
	err := tk.Transition(State("done"))
	if !errors.Is(err, apperr.InvalidState("")) {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
	if tk.State != StateExecuting {
		t.Fatal("state changed on rejected transition")
	}
}

func TestApply_CompletedFlag(t *testing.T) {
	cases := []struct {
		name      string
		from      State
		completed *bool
		want      State
	}{
		{"nil keeps pending", StatePending, nil, StatePending},
		{"true from executing", StateExecuting, boolPtr(true), StateDone},
		{"false from done", StateDone, boolPtr(false), StatePending},
		{"false keeps executing", StateExecuting, boolPtr(false), StateExecuting},
		{"true keeps done", StateDone, boolPtr(true), StateDone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := Task{Title: "a"}
			tk.setState(tc.from)

			if err := tk.Apply(UpdateInput{Title: "b", Completed: tc.completed}); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if tk.State != tc.want || tk.Completed != (tc.want == StateDone) {
				t.Fatalf("got %s completed=%v, want %s", tk.State, tk.Completed, tc.want)
			}
			if tk.Title != "b" {
				t.Fatalf("title not applied")
			}
		})
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []string{"PENDING", "EXECUTING", "DONE"} {
		if _, err := ParseState(s); err != nil {
			t.Fatalf("ParseState(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "pending", "STARTED"} {
		if _, err := ParseState(s); err == nil {
			t.Fatalf("ParseState(%q) should fail", s)
		}
	}
}
