package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studyquiz/internal/app"
	"studyquiz/internal/auth"
	"studyquiz/internal/config"
	"studyquiz/internal/httpapi"
	"studyquiz/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer pipeline.Close()

	st, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	blobs, filesDir, err := app.OpenBlobs(ctx, cfg.Uploads)
	if err != nil {
		return fmt.Errorf("failed to open upload storage: %w", err)
	}
	defer blobs.Close()

	if cfg.Auth.SessionKey == "" {
		log.Warn("SESSION_KEY not set, quiz progress will not survive a restart")
	}
	players, err := auth.NewPlayerStore(cfg.Auth.SessionDir, cfg.Auth.SessionKey, cfg.Production())
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET_KEY not set, every caller is anonymous")
	}

	srv := httpapi.New(pipeline.Generator, st, blobs, players, auth.NewTokens(cfg.Auth.JWTSecret), httpapi.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequireAuth:    cfg.Auth.RequireAuth,
		MaxFiles:       cfg.Uploads.MaxFiles,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		FilesDir:       filesDir,
	}, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "provider", cfg.Generation.Provider, "store", cfg.Store.Driver)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
