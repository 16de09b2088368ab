// Package apperr defines the user-visible error codes returned by the API.
package apperr

import (
	"errors"
	"log/slog"
	"net/http"

	"taskapp-backend/internal/respond"
)

type Code string

const (
	CodeTaskNotFound       Code = "TASK_NOT_FOUND"
	CodeSubtaskNotFound    Code = "SUBTASK_NOT_FOUND"
	CodeIdentityConflict   Code = "IDENTITY_CONFLICT"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeInternal           Code = "INTERNAL"
)

// Error is an error with a stable code and HTTP status.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrTaskNotFound       = &Error{Code: CodeTaskNotFound, Status: http.StatusNotFound, Message: "task not found"}
	ErrSubtaskNotFound    = &Error{Code: CodeSubtaskNotFound, Status: http.StatusNotFound, Message: "subtask not found"}
	ErrIdentityConflict   = &Error{Code: CodeIdentityConflict, Status: http.StatusConflict, Message: "email already registered"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: "unauthorized"}
)

func InvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, Status: http.StatusBadRequest, Message: msg}
}

type body struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Write renders err as a JSON error body. Errors that are not *Error are
// logged and reported as INTERNAL without leaking their text.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		appErr = &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "internal error"}
	}

	var b body
	b.Error.Code = appErr.Code
	b.Error.Message = appErr.Message

	respond.Status(w, appErr.Status, b)
}
