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

	"github.com/joho/godotenv"

	"nadja_ai/config"
	"nadja_ai/engine"
	"nadja_ai/handlers"
	"nadja_ai/provider"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The model probe runs once, before the server accepts traffic. With no
	// API key or no working model the server still comes up and answers with
	// canned lines only.
	var prov provider.Provider = provider.Unconfigured{}
	if cfg.APIKey != "" {
		gem, err := provider.NewGemini(ctx, cfg.APIKey, cfg.Models, logger)
		if err != nil {
			logger.Error("provider init failed, generation disabled", "error", err)
		} else {
			defer gem.Close()
			prov = gem
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, generation disabled")
	}

	eng := engine.New(cfg.Secret, cfg.Persona, prov, logger)
	h := &handlers.Handler{Engine: eng, Logger: logger.With("component", "http")}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("nadja doll server listening",
			"port", cfg.Port, "gemini_ready", prov.Available(), "model", prov.ModelID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
