package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskapp-backend/internal/ai"
	"taskapp-backend/internal/auditlog"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/config"
	"taskapp-backend/internal/db/dbtest"
	"taskapp-backend/internal/decision"
	"taskapp-backend/internal/tasks"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	dbx := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{JWTSecret: "secret", CORSOrigins: []string{"http://app.local"}}

	advisor := ai.New(ai.Options{}) // no key: every call falls back
	taskSvc := tasks.NewService(tasks.NewStore(dbx), advisor, logger)
	logs := auditlog.NewStore(dbx)
	engine, err := decision.NewEngine(advisor, logs, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	return newHandler(cfg, logger, routeDeps{
		DB:        dbx,
		Auth:      auth.NewService(dbx, []byte(cfg.JWTSecret)),
		Tasks:     taskSvc,
		Decisions: decision.NewService(taskSvc, engine, logs),
	})
}

func TestRoutes(t *testing.T) {
	h := newTestHandler(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/tasks", "", http.StatusOK},
		{http.MethodPost, "/api/tasks", `{"title":"a","priority":"high"}`, http.StatusCreated},
		{http.MethodPost, "/api/tasks/1/ai/decision", "", http.StatusOK},
		{http.MethodGet, "/api/tasks/1/ai/logs", "", http.StatusOK},
		{http.MethodPost, "/api/tasks/2/ai/decision", "", http.StatusNotFound},
		{http.MethodPatch, "/api/tasks/1", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: got %d want %d (%s)", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: missing request id", tc.method, tc.path)
		}
	}
}

func TestRoutes_FallbackDecisionForHighPriority(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte(`{"title":"a","priority":"high"}`))))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/1/ai/decision", nil))
	if !strings.Contains(rec.Body.String(), `"nextState":"EXECUTING"`) {
		t.Fatalf("unexpected decision %s", rec.Body.String())
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.local" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
