// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Command server runs the TMC App backend: magic-link authentication
// and the members API backed by Google Sheets.
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

	"github.com/standardhuman/tmc-app/internal/api"
	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/config"
	"github.com/standardhuman/tmc-app/internal/email"
	"github.com/standardhuman/tmc-app/internal/logging"
	"github.com/standardhuman/tmc-app/internal/roster"
	"github.com/standardhuman/tmc-app/internal/sheets"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, warnings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	for _, w := range warnings {
		logging.Warn().Msg(w)
	}

	logging.Info().
		Str("mode", cfg.Sheets.Mode).
		Str("email_provider", cfg.Email.Provider).
		Msg("Starting TMC App server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := buildSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create sheet source: %w", err)
	}

	sender := buildSender(cfg)
	tokens := auth.NewTokenService(cfg.EffectiveJWTSecret(), cfg.Security.MagicTokenTTL, cfg.Security.SessionTokenTTL)
	rosterSvc := roster.New(src, cfg.Sheets.RosterID)

	handler := api.NewHandler(cfg, src, rosterSvc, tokens, sender)
	router := api.NewRouter(handler, auth.NewGuard(tokens), api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:    cfg.Security.CORSOrigins,
		RateLimitRequests:     cfg.Security.RateLimitReqs,
		RateLimitWindow:       cfg.Security.RateLimitWindow,
		AuthRateLimitRequests: cfg.Security.AuthRateLimitReqs,
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

// buildSource creates the sheet source for the configured access mode.
func buildSource(ctx context.Context, cfg *config.Config) (sheets.Source, error) {
	switch cfg.Sheets.Mode {
	case config.ModeAPI:
		return sheets.NewAPISource(ctx, cfg.Sheets.CredentialsJSON)
	default:
		return sheets.NewPublishedSource(cfg.Sheets.Timeout), nil
	}
}

// buildSender creates the email sender for the configured provider.
func buildSender(cfg *config.Config) email.Sender {
	if cfg.Email.Provider == "resend" {
		return email.NewResendSender(cfg.Email.APIKey, cfg.Email.From)
	}
	return email.NewNoopSender()
}
