package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/telemetry"
)

// Event names.
const (
	TaskCreated       = "task_created"
	TaskUpdated       = "task_updated"
	TaskStateChanged  = "task_state_changed"
	TaskDeleted       = "task_deleted"
	AIDecisionMade    = "ai_decision_made"
	SubtasksGenerated = "subtasks_generated"
	AppOpened         = "app_opened"
	DecisionFeedback  = "ai_decision_feedback"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID     *int64
	RequestID  string
	Platform   string
	AppVersion string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	env := Envelope{
		RequestID:  telemetry.RequestIDFromContext(r.Context()),
		Platform:   platform,
		AppVersion: strings.TrimSpace(r.Header.Get("X-App-Version")),
	}
	if uid, ok := auth.IdentityFromContext(r.Context()).UserID(); ok {
		env.UserID = &uid
	}
	return env
}

// Log inserts one analytics event. Failures never break the calling flow:
// callers discard the returned error. Never pass raw task text in props.
func Log(ctx context.Context, db *sql.DB, env Envelope, eventName string, props any) error {
	if eventName == "" {
		return nil
	}

	b, err := json.Marshal(props)
	if err != nil {
		return err
	}

	var userID any
	if env.UserID != nil {
		userID = *env.UserID
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, request_id,
			platform, app_version,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, eventName, time.Now().UTC(),
		userID, nullIfEmpty(env.RequestID),
		env.Platform, env.AppVersion,
		string(b),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
