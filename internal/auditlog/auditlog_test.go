package auditlog

import (
	"context"
	"testing"
	"time"

	"taskapp-backend/internal/db/dbtest"
)

func TestAppendAndList(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := store.Append(ctx, Entry{TaskID: 1, SuggestedState: "EXECUTING", Reason: "a", CreatedAt: base})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected generated id")
	}
	if _, err := store.Append(ctx, Entry{TaskID: 1, SuggestedState: "DONE", Reason: "b", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := store.Append(ctx, Entry{TaskID: 2, SuggestedState: "PENDING", Reason: "other", CreatedAt: base}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.ListByTask(ctx, 1)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Reason != "b" || got[1].Reason != "a" {
		t.Fatalf("expected newest first, got %q then %q", got[0].Reason, got[1].Reason)
	}
	if !got[1].CreatedAt.Equal(base) {
		t.Fatalf("created_at not preserved: %s", got[1].CreatedAt)
	}
}

func TestListByTask_TieBreaksOnID(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, r := range []string{"first", "second"} {
		if _, err := store.Append(ctx, Entry{TaskID: 9, SuggestedState: "PENDING", Reason: r, CreatedAt: at}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.ListByTask(ctx, 9)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(got) != 2 || got[0].Reason != "second" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestListByTask_Empty(t *testing.T) {
	store := NewStore(dbtest.Open(t))

	got, err := store.ListByTask(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestAppend_ClosedDB(t *testing.T) {
	dbx := dbtest.Open(t)
	dbx.Close()

	if _, err := NewStore(dbx).Append(context.Background(), Entry{TaskID: 1, SuggestedState: "DONE", Reason: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
