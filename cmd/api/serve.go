package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskapp-backend/internal/ai"
	"taskapp-backend/internal/auditlog"
	"taskapp-backend/internal/auth"
	"taskapp-backend/internal/config"
	"taskapp-backend/internal/db"
	"taskapp-backend/internal/decision"
	"taskapp-backend/internal/tasks"
	"taskapp-backend/internal/telemetry"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := telemetry.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	otelProvider, err := telemetry.Init(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelProvider.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.NewMetrics(otelProvider.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	database, err := db.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()
	logger.Info("database connected", "driver", cfg.DBDriver)

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		return err
	}

	if cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set; decisions and subtasks use the local fallback")
	}
	advisor := ai.New(ai.Options{
		APIKey:      cfg.OpenAIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: cfg.OpenAITemperature,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Timeout:     cfg.OpenAITimeout,
		Tracer:      otelProvider.Tracer,
	})

	taskSvc := tasks.NewService(tasks.NewStore(database), advisor, logger)
	logs := auditlog.NewStore(database)

	engine, err := decision.NewEngine(advisor, logs, logger)
	if err != nil {
		return fmt.Errorf("init decision engine: %w", err)
	}
	engine.Metrics = metrics
	engine.Tracer = otelProvider.Tracer

	deps := routeDeps{
		DB:        database,
		Auth:      auth.NewService(database, []byte(cfg.JWTSecret)),
		Tasks:     taskSvc,
		Decisions: decision.NewService(taskSvc, engine, logs),
	}
	handler := newHandler(cfg, logger, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
