// Eva - Conversational Sales-Qualification Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antaresinnovate/eva/internal/api"
	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/conversation"
	"github.com/antaresinnovate/eva/internal/llm"
	"github.com/antaresinnovate/eva/internal/middleware"
	"github.com/antaresinnovate/eva/internal/store"
	"github.com/antaresinnovate/eva/internal/tts"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"speech", cfg.Features.Speech,
		"leads", cfg.Features.Leads,
		"dev", cfg.IsDevelopment())

	// Initialize session store.
	sessions, err := newSessionStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store ready", "backend", cfg.StoreBackend)

	// Initialize services.
	runtime := config.NewRuntime(cfg)
	model := llm.NewClient()

	var synth conversation.Synthesizer
	var voices api.VoiceLister
	if cfg.Features.Speech {
		ttsClient := tts.NewClient()
		synth = ttsClient
		voices = ttsClient
		slog.Info("Speech synthesis enabled", "voice", cfg.Voice)
	}

	svc := conversation.NewService(sessions, model, synth, runtime, cfg.Features)

	// Initialize handlers.
	handler := api.NewHandler(svc, runtime, voices)
	wsHandler := api.NewChatSocketHandler(svc, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The redis backend expires sessions itself via key TTLs.
	if cfg.StoreBackend != config.StoreRedis {
		store.StartExpiryWorker(ctx, sessions, cfg.SessionTTL)
		slog.Info("Session expiry worker started", "session_ttl", cfg.SessionTTL)
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func newSessionStore(cfg *config.Config) (store.SessionStore, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		return store.NewSQLite(cfg.DBPath)
	case config.StoreRedis:
		return store.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.SessionTTL)
	default:
		return store.NewMemory(), nil
	}
}
