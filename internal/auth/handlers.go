package auth

import (
	"encoding/json"
	"net/http"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/respond"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

func RegisterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apperr.Write(w, r, apperr.InvalidRequest("invalid json"))
			return
		}

		token, u, err := svc.Register(r.Context(), body.Email, body.Password)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		respond.Status(w, http.StatusCreated, tokenResponse{UserID: u.ID, Token: token})
	}
}

func LoginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apperr.Write(w, r, apperr.InvalidRequest("invalid json"))
			return
		}

		token, u, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}

		respond.JSON(w, tokenResponse{UserID: u.ID, Token: token})
	}
}

func MeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := IdentityFromContext(r.Context()).UserID()
		if !ok {
			apperr.Write(w, r, apperr.ErrUnauthorized)
			return
		}

		u, err := svc.Me(r.Context(), uid)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		respond.JSON(w, u)
	}
}
