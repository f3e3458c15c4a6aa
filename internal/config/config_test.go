// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Sheets.RosterID = "sheet-id-1"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid published mode",
			modify: func(_ *Config) {},
		},
		{
			name: "valid api mode with credentials",
			modify: func(c *Config) {
				c.Sheets.Mode = ModeAPI
				c.Sheets.CredentialsJSON = `{"type":"service_account"}`
			},
		},
		{
			name: "invalid mode",
			modify: func(c *Config) {
				c.Sheets.Mode = "hybrid"
			},
			wantErr: "invalid sheets.mode",
		},
		{
			name: "api mode without credentials",
			modify: func(c *Config) {
				c.Sheets.Mode = ModeAPI
			},
			wantErr: "credentials_json is empty",
		},
		{
			name: "missing roster id",
			modify: func(c *Config) {
				c.Sheets.RosterID = ""
			},
			wantErr: "roster_id is required",
		},
		{
			name: "port out of range",
			modify: func(c *Config) {
				c.Server.Port = 70000
			},
			wantErr: "invalid server.port",
		},
		{
			name: "resend without api key",
			modify: func(c *Config) {
				c.Email.Provider = "resend"
			},
			wantErr: "api_key is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			_, err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWarnsOnDevSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Security.JWTSecret = ""

	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "development fallback secret") {
			found = true
		}
	}
	if !found {
		t.Errorf("Validate() warnings = %v, want dev secret warning", warnings)
	}
}

func TestEffectiveJWTSecret(t *testing.T) {
	cfg := validConfig()

	if got := cfg.EffectiveJWTSecret(); got != DevJWTSecret {
		t.Errorf("EffectiveJWTSecret() = %q, want dev fallback", got)
	}

	cfg.Security.JWTSecret = "real-secret"
	if got := cfg.EffectiveJWTSecret(); got != "real-secret" {
		t.Errorf("EffectiveJWTSecret() = %q, want configured secret", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"jwt secret", "JWT_SECRET", "security.jwt_secret"},
		{"sheets mode", "SHEETS_MODE", "sheets.mode"},
		{"roster sheet", "ROSTER_SHEET_ID", "sheets.roster_id"},
		{"http port", "HTTP_PORT", "server.port"},
		{"resend key", "RESEND_API_KEY", "email.api_key"},
		{"unmapped var skipped", "PATH", ""},
		{"unmapped random skipped", "SOME_RANDOM_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Sheets.Mode != ModePublished {
		t.Errorf("default mode = %q, want %q", cfg.Sheets.Mode, ModePublished)
	}
	if cfg.Security.MagicTokenTTL != 15*time.Minute {
		t.Errorf("default magic token TTL = %v, want 15m", cfg.Security.MagicTokenTTL)
	}
	if cfg.Security.SessionTokenTTL != 30*24*time.Hour {
		t.Errorf("default session token TTL = %v, want 720h", cfg.Security.SessionTokenTTL)
	}
	if cfg.Email.Provider != "noop" {
		t.Errorf("default email provider = %q, want noop", cfg.Email.Provider)
	}
}
