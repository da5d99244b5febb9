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

	"wedding-seating/internal/api"
	"wedding-seating/internal/app"
	"wedding-seating/internal/auth"
	"wedding-seating/internal/config"
	"wedding-seating/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.Close()

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; admin login is disabled")
	}
	if cfg.CronSecret == "" {
		log.Warn().Msg("CRON_SECRET is empty; the cron trigger rejects every call")
	}

	router := api.NewRouter(api.Deps{
		Service:      a.Service,
		Allocator:    a.Allocator,
		Tokens:       auth.NewTokens(cfg.JWTSecret, cfg.AdminTokenTTL),
		Passwords:    auth.PasswordChecker{Hash: cfg.AdminPasswordHash, Plain: cfg.AdminPassword},
		CronSecret:   cfg.CronSecret,
		CookieSecure: cfg.CookieSecure,
		Layout:       a.Layout(),
		Log:          log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("Wedding server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
