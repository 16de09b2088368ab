package tasks

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"taskapp-backend/internal/analytics"
	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/respond"
)

// PathID parses a positive integer path segment. A malformed id is reported
// like a missing task so ids are never distinguishable.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		if name == "subtaskId" {
			return 0, apperr.ErrSubtaskNotFound
		}
		return 0, apperr.ErrTaskNotFound
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidRequest("invalid json")
	}
	return nil
}

func logEvent(r *http.Request, dbx *sql.DB, name string, props map[string]any) {
	_ = analytics.Log(r.Context(), dbx, analytics.FromRequest(r), name, props)
}

// GET /api/tasks
func ListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), auth.IdentityFromContext(r.Context()))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, list)
	}
}

// POST /api/tasks
func CreateHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateInput
		if err := decodeBody(r, &body); err != nil {
			apperr.Write(w, r, err)
			return
		}

		t, err := svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), body)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: task_created
		logEvent(r, dbx, analytics.TaskCreated, map[string]any{
			"task_id":      t.ID,
			"title_len":    len([]rune(t.Title)),
			"has_due_date": t.DueDate != nil,
			"priority":     t.Priority,
		})

		respond.Status(w, http.StatusCreated, t)
	}
}

// GET /api/tasks/{id}
func GetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		t, err := svc.Get(r.Context(), auth.IdentityFromContext(r.Context()), id)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, t)
	}
}

// PUT /api/tasks/{id}
func UpdateHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		var body UpdateInput
		if err := decodeBody(r, &body); err != nil {
			apperr.Write(w, r, err)
			return
		}

		t, err := svc.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, body)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: task_updated
		logEvent(r, dbx, analytics.TaskUpdated, map[string]any{
			"task_id": t.ID,
			"state":   t.State,
		})

		respond.JSON(w, t)
	}
}

// PUT /api/tasks/{id}/state
func SetStateHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		var body struct {
			State string `json:"state"`
		}
		if err := decodeBody(r, &body); err != nil {
			apperr.Write(w, r, err)
			return
		}
		next, err := ParseState(body.State)
		if err != nil {
			apperr.Write(w, r, apperr.InvalidState(err.Error()))
			return
		}

		t, prev, err := svc.SetState(r.Context(), auth.IdentityFromContext(r.Context()), id, next)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: task_state_changed
		if prev != t.State {
			logEvent(r, dbx, analytics.TaskStateChanged, map[string]any{
				"task_id": t.ID,
				"from":    prev,
				"to":      t.State,
			})
		}

		respond.JSON(w, t)
	}
}

// DELETE /api/tasks/{id}
func DeleteHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		if err := svc.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: task_deleted
		logEvent(r, dbx, analytics.TaskDeleted, map[string]any{"task_id": id})

		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------------
// SUBTASKS
// -------------------------------

// GET /api/tasks/{id}/subtasks
func ListSubtasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		list, err := svc.Subtasks(r.Context(), auth.IdentityFromContext(r.Context()), id)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, list)
	}
}

// POST /api/tasks/{id}/subtasks/generate
func GenerateSubtasksHandler(svc *Service, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// body is optional; an empty one means "use the stored task"
		var body GenerateInput
		if r.ContentLength != 0 {
			if err := decodeBody(r, &body); err != nil {
				apperr.Write(w, r, err)
				return
			}
		}

		created, err := svc.GenerateSubtasks(r.Context(), auth.IdentityFromContext(r.Context()), id, body)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		// analytics: subtasks_generated
		logEvent(r, dbx, analytics.SubtasksGenerated, map[string]any{
			"task_id": id,
			"count":   len(created),
		})

		respond.Status(w, http.StatusCreated, created)
	}
}

// PUT /api/tasks/{id}/subtasks/{subtaskId}
func UpdateSubtaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		subID, err := PathID(r, "subtaskId")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		var body SubtaskInput
		if err := decodeBody(r, &body); err != nil {
			apperr.Write(w, r, err)
			return
		}

		st, err := svc.UpdateSubtask(r.Context(), auth.IdentityFromContext(r.Context()), id, subID, body)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, st)
	}
}

// DELETE /api/tasks/{id}/subtasks/{subtaskId}
func DeleteSubtaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		subID, err := PathID(r, "subtaskId")
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		if err := svc.DeleteSubtask(r.Context(), auth.IdentityFromContext(r.Context()), id, subID); err != nil {
			apperr.Write(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
