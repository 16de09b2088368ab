package analytics

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/respond"
)

// app_opened: client reports an app start
func AppOpenedHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // push/deeplink/icon/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		props := map[string]any{
			"cold_start": body.ColdStart,
			"from":       body.From,
		}
		_ = Log(r.Context(), dbx, FromRequest(r), AppOpened, props)

		respond.JSON(w, map[string]any{"ok": true})
	}
}

// ai_decision_feedback: whether the user applied or dismissed a recommendation
func DecisionFeedbackHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TaskID         int64  `json:"task_id"`
			SuggestedState string `json:"suggested_state"`
			Applied        bool   `json:"applied"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apperr.Write(w, r, apperr.InvalidRequest("invalid json"))
			return
		}
		if body.TaskID == 0 {
			apperr.Write(w, r, apperr.InvalidRequest("task_id required"))
			return
		}

		props := map[string]any{
			"task_id":         body.TaskID,
			"suggested_state": body.SuggestedState,
			"applied":         body.Applied,
		}
		_ = Log(r.Context(), dbx, FromRequest(r), DecisionFeedback, props)

		respond.JSON(w, map[string]any{"ok": true})
	}
}
