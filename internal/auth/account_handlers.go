package auth

import (
	"net/http"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/respond"
)

func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// JWT is stateless: the client just drops the token.
		respond.JSON(w, map[string]any{"ok": true})
	}
}

func DeleteAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := IdentityFromContext(r.Context()).UserID()
		if !ok {
			apperr.Write(w, r, apperr.ErrUnauthorized)
			return
		}

		if err := svc.DeleteAccount(r.Context(), uid); err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, map[string]any{"ok": true})
	}
}
