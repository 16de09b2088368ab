package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"taskapp-backend/internal/analytics"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/config"
	"taskapp-backend/internal/decision"
	"taskapp-backend/internal/tasks"
	"taskapp-backend/internal/telemetry"
)

type routeDeps struct {
	DB        *sql.DB
	Auth      *auth.Service
	Tasks     *tasks.Service
	Decisions *decision.Service
}

func newHandler(cfg *config.Config, logger *slog.Logger, d routeDeps) http.Handler {
	authMW := auth.New([]byte(cfg.JWTSecret)).WithLookup(d.Auth.UserExists)

	// ----- API (anonymous allowed, token narrows visibility) -----
	api := http.NewServeMux()
	api.HandleFunc("GET /api/tasks", tasks.ListHandler(d.Tasks))
	api.HandleFunc("POST /api/tasks", tasks.CreateHandler(d.Tasks, d.DB))
	api.HandleFunc("GET /api/tasks/{id}", tasks.GetHandler(d.Tasks))
	api.HandleFunc("PUT /api/tasks/{id}", tasks.UpdateHandler(d.Tasks, d.DB))
	api.HandleFunc("DELETE /api/tasks/{id}", tasks.DeleteHandler(d.Tasks, d.DB))
	api.HandleFunc("PUT /api/tasks/{id}/state", tasks.SetStateHandler(d.Tasks, d.DB))

	api.HandleFunc("POST /api/tasks/{id}/ai/decision", decision.DecideHandler(d.Decisions, d.DB))
	api.HandleFunc("GET /api/tasks/{id}/ai/logs", decision.LogsHandler(d.Decisions))

	api.HandleFunc("GET /api/tasks/{id}/subtasks", tasks.ListSubtasksHandler(d.Tasks))
	api.HandleFunc("POST /api/tasks/{id}/subtasks/generate", tasks.GenerateSubtasksHandler(d.Tasks, d.DB))
	api.HandleFunc("PUT /api/tasks/{id}/subtasks/{subtaskId}", tasks.UpdateSubtaskHandler(d.Tasks))
	api.HandleFunc("DELETE /api/tasks/{id}/subtasks/{subtaskId}", tasks.DeleteSubtaskHandler(d.Tasks))

	api.HandleFunc("POST /api/analytics/app-opened", analytics.AppOpenedHandler(d.DB))
	api.HandleFunc("POST /api/analytics/decision-feedback", analytics.DecisionFeedbackHandler(d.DB))

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH -----
	mux.HandleFunc("POST /auth/register", auth.RegisterHandler(d.Auth))
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(d.Auth))
	mux.HandleFunc("POST /auth/logout", auth.LogoutHandler())
	mux.HandleFunc("GET /auth/me", authMW.Wrap(auth.MeHandler(d.Auth)))
	mux.HandleFunc("DELETE /auth/account", authMW.Wrap(auth.DeleteAccountHandler(d.Auth)))

	mux.Handle("/api/", authMW.Optional(api))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", telemetry.RequestIDHeader},
		ExposedHeaders:   []string{telemetry.RequestIDHeader},
		AllowCredentials: true,
	})

	return c.Handler(telemetry.RequestID(logger, mux))
}
