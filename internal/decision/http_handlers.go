package decision

import (
	"database/sql"
	"net/http"
	"time"

	"taskapp-backend/internal/analytics"
	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/respond"
	"taskapp-backend/internal/tasks"
)

// POST /api/tasks/{id}/ai/decision
func DecideHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := auth.IdentityFromContext(r.Context())

		taskID, err := tasks.PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		out, err := svc.Decide(r.Context(), caller, taskID)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: ai_decision_made
		{
			props := map[string]any{
				"task_id":      taskID,
				"next_state":   out.Decision.NextState,
				"source":       out.Source,
				"audit_stored": out.AuditErr == nil,
			}
			_ = analytics.Log(r.Context(), dbx, analytics.FromRequest(r), analytics.AIDecisionMade, props)
		}

		respond.JSON(w, out.Decision)
	}
}

type logView struct {
	SuggestedState string    `json:"suggestedState"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GET /api/tasks/{id}/ai/logs
func LogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := auth.IdentityFromContext(r.Context())

		taskID, err := tasks.PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		entries, err := svc.ListLogs(r.Context(), caller, taskID)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		out := make([]logView, 0, len(entries))
		for _, e := range entries {
			out = append(out, logView{SuggestedState: e.SuggestedState, Reason: e.Reason, CreatedAt: e.CreatedAt})
		}
		respond.JSON(w, out)
	}
}
