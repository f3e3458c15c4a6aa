// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package config loads and validates server configuration from defaults,
// an optional YAML file, and environment variables, in that order of
// precedence (env vars win).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Sheet access modes.
const (
	// ModePublished reads publicly published sheets over anonymous CSV
	// export. Write operations are unavailable in this mode.
	ModePublished = "published"

	// ModeAPI uses the authenticated Google Sheets API with
	// service-account credentials. Enables append and update operations.
	ModeAPI = "api"
)

// DevJWTSecret is the fallback signing secret used when no secret is
// configured. Tokens signed with it are worthless outside local
// development; Validate warns loudly when it is in effect.
const DevJWTSecret = "development-secret-change-me"

// Config is the root configuration for the TMC App server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Sheets   SheetsConfig   `koanf:"sheets"`
	Security SecurityConfig `koanf:"security"`
	Email    EmailConfig    `koanf:"email"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// BaseURL is the public URL of the frontend, used to build
	// magic-link verification URLs (<base_url>/#/verify?token=...).
	BaseURL string `koanf:"base_url"`
}

// SheetsConfig holds Google Sheets data source settings.
type SheetsConfig struct {
	// Mode selects the access strategy: "published" or "api".
	Mode string `koanf:"mode"`

	// Spreadsheet IDs per dataset. RosterID covers the member roster,
	// intros, and feedback tabs of the main workbook.
	RosterID        string `koanf:"roster_id"`
	AnnouncementsID string `koanf:"announcements_id"`
	ResourcesID     string `koanf:"resources_id"`
	ConfigID        string `koanf:"config_id"`

	// CredentialsJSON is the service-account key, required in api mode.
	CredentialsJSON string `koanf:"credentials_json"`

	// Timeout bounds each upstream fetch.
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	MagicTokenTTL   time.Duration `koanf:"magic_token_ttl"`
	SessionTokenTTL time.Duration `koanf:"session_token_ttl"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// AuthRateLimitReqs applies a stricter limit to the auth endpoints.
	AuthRateLimitReqs int `koanf:"auth_rate_limit_reqs"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// EmailConfig holds outbound email settings.
type EmailConfig struct {
	// Provider selects the sender: "resend" or "noop". The noop sender
	// logs instead of sending, which is how magic links surface in dev.
	Provider string `koanf:"provider"`

	APIKey string `koanf:"api_key"`
	From   string `koanf:"from"`

	// NotificationTo receives contact form and feedback notifications.
	NotificationTo string `koanf:"notification_to"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevSecret reports whether the dev fallback JWT secret is in effect.
func (c *Config) IsDevSecret() bool {
	return c.Security.JWTSecret == "" || c.Security.JWTSecret == DevJWTSecret
}

// EffectiveJWTSecret returns the configured secret or the dev fallback.
func (c *Config) EffectiveJWTSecret() string {
	if c.Security.JWTSecret == "" {
		return DevJWTSecret
	}
	return c.Security.JWTSecret
}

// Validate checks the configuration for invalid combinations.
// It returns an error for fatal problems and a list of warnings for
// conditions the operator should know about but that do not prevent
// startup.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	switch c.Sheets.Mode {
	case ModePublished, ModeAPI:
	default:
		return nil, fmt.Errorf("invalid sheets.mode %q: must be %q or %q",
			c.Sheets.Mode, ModePublished, ModeAPI)
	}

	if c.Sheets.Mode == ModeAPI && strings.TrimSpace(c.Sheets.CredentialsJSON) == "" {
		return nil, fmt.Errorf("sheets.mode is %q but sheets.credentials_json is empty", ModeAPI)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d: must be 1-65535", c.Server.Port)
	}

	if c.Sheets.RosterID == "" {
		return nil, fmt.Errorf("sheets.roster_id is required")
	}

	if c.IsDevSecret() {
		warnings = append(warnings,
			"security.jwt_secret is unset: using the development fallback secret; all issued tokens are forgeable")
	}

	if c.Email.Provider == "resend" && c.Email.APIKey == "" {
		return nil, fmt.Errorf("email.provider is resend but email.api_key is empty")
	}

	if c.Email.Provider == "noop" {
		warnings = append(warnings, "email.provider is noop: magic links will be logged, not sent")
	}

	return warnings, nil
}
