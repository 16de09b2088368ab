package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"taskapp-backend/internal/auth"
)

func TestOwnerAllows(t *testing.T) {
	cases := []struct {
		name   string
		owner  Owner
		caller auth.Identity
		want   bool
	}{
		{"public anonymous", Public(), auth.Anonymous(), true},
		{"public user", Public(), auth.User(1), true},
		{"owned by caller", Owned(1), auth.User(1), true},
		{"owned by other", Owned(1), auth.User(2), false},
		{"owned anonymous", Owned(1), auth.Anonymous(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.owner.Allows(tc.caller); got != tc.want {
				t.Fatalf("Allows = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTaskJSON(t *testing.T) {
	due := NewDate(2026, time.June, 30)
	tk := Task{ID: 1, Title: "t", DueDate: &due, State: StateDone, Completed: true, Owner: Owned(4)}

	b, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	_ = json.Unmarshal(b, &got)

	if got["dueDate"] != "2026-06-30" || got["ownerId"] != float64(4) || got["state"] != "DONE" {
		t.Fatalf("unexpected json %s", b)
	}

	b, _ = json.Marshal(Task{Owner: Public()})
	_ = json.Unmarshal(b, &got)
	if got["ownerId"] != nil || got["priority"] != nil {
		t.Fatalf("expected null owner and priority, got %s", b)
	}
}

func TestDateUnmarshal(t *testing.T) {
	var in CreateInput
	if err := json.Unmarshal([]byte(`{"title":"a","dueDate":"2026-01-02"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.DueDate == nil || in.DueDate.String() != "2026-01-02" {
		t.Fatalf("unexpected date %v", in.DueDate)
	}
	if err := json.Unmarshal([]byte(`{"dueDate":"02/01/2026"}`), &in); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}
