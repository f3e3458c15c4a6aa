// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/config"
	"github.com/standardhuman/tmc-app/internal/sheets"
)

// expiredSessionToken signs a session token that expired an hour ago.
func expiredSessionToken(t *testing.T, secret string) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: "alice@example.com",
		Type:  auth.TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return signed
}

func TestAnnouncementsEndpoint(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)
	env.src.tabs[announcementsTab] = []sheets.Row{
		{"date": "2026-01-05", "title": "Old", "content": "via content alias", "author": "Sam"},
		{"date": "2026-03-10", "title": "New", "body": "body text", "author": "Alice"},
		{"date": "not a date", "title": "Dateless", "body": "x"},
	}

	rec := env.request(t, http.MethodGet, "/api/announcements", env.sessionToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var items []announcement
	decodeBody(t, rec, &items)

	if len(items) != 3 {
		t.Fatalf("got %d announcements, want 3", len(items))
	}
	if items[0].Title != "New" || items[1].Title != "Old" {
		t.Errorf("order = %q,%q, want newest first", items[0].Title, items[1].Title)
	}
	if items[2].Title != "Dateless" {
		t.Errorf("unparseable date should sort last, got %q", items[2].Title)
	}
	if items[1].Body != "via content alias" {
		t.Errorf("body = %q, want content alias resolved", items[1].Body)
	}
}

func TestResourcesEndpoint(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)
	env.src.tabs[resourcesTab] = []sheets.Row{
		{"id": "welcome", "title": "Welcome Guide", "category": "Orientation", "description": "start here"},
		{"title": "Untagged", "content": "no id, no category"},
	}

	rec := env.request(t, http.MethodGet, "/api/resources", env.sessionToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var items []resource
	decodeBody(t, rec, &items)

	if len(items) != 2 {
		t.Fatalf("got %d resources, want 2", len(items))
	}
	if items[0].ID != "welcome" || items[0].Category != "Orientation" {
		t.Errorf("first resource = %+v, want explicit id and category kept", items[0])
	}
	if items[1].ID != "resource-1" {
		t.Errorf("second resource id = %q, want positional default resource-1", items[1].ID)
	}
	if items[1].Category != "General" {
		t.Errorf("second resource category = %q, want General default", items[1].Category)
	}
}

func TestConfigGet(t *testing.T) {
	t.Run("key value table becomes object", func(t *testing.T) {
		env := newTestEnv(t, config.ModePublished)
		env.src.tabs[configTab] = []sheets.Row{
			{"key": "welcome_message", "value": "Hello"},
			{"key": "retreat_date", "value": "2026-09-12"},
			{"key": "", "value": "ignored"},
		}

		rec := env.request(t, http.MethodGet, "/api/config", env.sessionToken(t), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var cfg map[string]string
		decodeBody(t, rec, &cfg)
		if len(cfg) != 2 {
			t.Fatalf("got %d keys, want 2: %v", len(cfg), cfg)
		}
		if cfg["welcome_message"] != "Hello" {
			t.Errorf("welcome_message = %q, want Hello", cfg["welcome_message"])
		}
	})

	t.Run("fetch failure degrades to empty object", func(t *testing.T) {
		env := newTestEnv(t, config.ModePublished)
		env.src.errs[configTab] = errors.New("upstream down")

		rec := env.request(t, http.MethodGet, "/api/config", env.sessionToken(t), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 despite fetch failure", rec.Code)
		}

		var cfg map[string]string
		decodeBody(t, rec, &cfg)
		if len(cfg) != 0 {
			t.Errorf("config = %v, want empty object", cfg)
		}
	})
}

func TestConfigPost(t *testing.T) {
	t.Run("read-only in published mode", func(t *testing.T) {
		env := newTestEnv(t, config.ModePublished)

		rec := env.request(t, http.MethodPost, "/api/config", env.sessionToken(t),
			map[string]string{"welcome_message": "Hi"})
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status = %d, want 501", rec.Code)
		}
	})

	t.Run("upserts in api mode", func(t *testing.T) {
		env := newTestEnv(t, config.ModeAPI)
		env.src.tabs[configTab] = []sheets.Row{
			{"key": "welcome_message", "value": "Hello"},
		}

		rec := env.request(t, http.MethodPost, "/api/config", env.sessionToken(t),
			map[string]string{
				"welcome_message": "Updated",
				"new_key":         "fresh",
			})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}

		// Existing key updated in place at its physical row.
		if got := env.src.updates[2]; len(got) != 2 || got[1] != "Updated" {
			t.Errorf("updates[2] = %v, want [welcome_message Updated]", got)
		}
		// New key appended.
		if len(env.src.appends) != 1 || env.src.appends[0][0] != "new_key" {
			t.Errorf("appends = %v, want one append of new_key", env.src.appends)
		}
	})

	t.Run("empty body rejected", func(t *testing.T) {
		env := newTestEnv(t, config.ModeAPI)

		rec := env.request(t, http.MethodPost, "/api/config", env.sessionToken(t), map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
