// Command bonsaid runs the Bonsai todo API: REST endpoints, the chat
// pipeline, and live task updates over WebSocket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	bonsaihttp "github.com/bonsai-todo/bonsai/internal/adapter/http"
	bonsainats "github.com/bonsai-todo/bonsai/internal/adapter/nats"
	"github.com/bonsai-todo/bonsai/internal/adapter/openai"
	"github.com/bonsai-todo/bonsai/internal/adapter/otel"
	"github.com/bonsai-todo/bonsai/internal/adapter/postgres"
	"github.com/bonsai-todo/bonsai/internal/adapter/ristretto"
	"github.com/bonsai-todo/bonsai/internal/adapter/ws"
	"github.com/bonsai-todo/bonsai/internal/ai"
	"github.com/bonsai-todo/bonsai/internal/config"
	"github.com/bonsai-todo/bonsai/internal/logger"
	"github.com/bonsai-todo/bonsai/internal/middleware"
	"github.com/bonsai-todo/bonsai/internal/resilience"
	"github.com/bonsai-todo/bonsai/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"ai_model", cfg.AI.Model,
		"auth_enabled", cfg.Auth.Enabled,
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdownTracer, err := otel.InitTracer(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := bonsainats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- Services ---
	store := postgres.NewStore(pool)

	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	provider := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, breaker)
	interpreter := ai.NewInterpreter(provider, cfg.AI.Timeout)

	authSvc := service.NewAuthService(store, &cfg.Auth)
	taskSvc := service.NewTaskService(store, queue, cache, cfg.Cache.TTL)
	executor := service.NewExecutor(taskSvc)
	chatSvc := service.NewChatService(store, interpreter, executor, taskSvc,
		cfg.AI.ConfidenceLow, cfg.AI.ConfidenceHigh)

	// --- Live updates ---
	hub := ws.NewHub()
	bridge := ws.NewBridge(queue, hub)
	if err := bridge.Start(ctx); err != nil {
		return fmt.Errorf("event bridge: %w", err)
	}
	defer bridge.Stop()

	// --- HTTP ---
	handlers := bonsaihttp.NewHandlers(authSvc, taskSvc, chatSvc, store)
	handlers.BreakerState = provider.BreakerState
	handlers.QueueHealthy = queue.IsConnected
	handlers.WSConnections = hub.ConnectionCount

	r := chi.NewRouter()
	r.Use(bonsaihttp.CORS(cfg.Server.CORSOrigin))
	r.Use(bonsaihttp.SecurityHeaders)
	r.Use(bonsaihttp.RequestID)
	r.Use(bonsaihttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))

	r.Get("/ws", hub.HandleWS)
	bonsaihttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
