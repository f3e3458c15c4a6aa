// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/config"
	"github.com/standardhuman/tmc-app/internal/email"
	"github.com/standardhuman/tmc-app/internal/roster"
	"github.com/standardhuman/tmc-app/internal/sheets"
)

// fakeSource serves canned rows per tab and records writes.
type fakeSource struct {
	tabs     map[string][]sheets.Row
	headers  map[string][]string
	errs     map[string]error
	appends  [][]string
	updates  map[int][]string
	readOnly bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tabs:    map[string][]sheets.Row{},
		headers: map[string][]string{},
		errs:    map[string]error{},
		updates: map[int][]string{},
	}
}

func tabOf(rangeSpec string) string {
	if idx := strings.Index(rangeSpec, "!"); idx >= 0 {
		return rangeSpec[:idx]
	}
	return rangeSpec
}

func (f *fakeSource) Fetch(_ context.Context, _, rangeSpec string) ([]sheets.Row, error) {
	tab := tabOf(rangeSpec)
	if err := f.errs[tab]; err != nil {
		return nil, err
	}
	return f.tabs[tab], nil
}

func (f *fakeSource) Append(_ context.Context, _, rangeSpec string, values []string) error {
	if f.readOnly {
		return sheets.ErrReadOnly
	}
	if err := f.errs[tabOf(rangeSpec)]; err != nil {
		return err
	}
	f.appends = append(f.appends, values)
	return nil
}

func (f *fakeSource) Update(_ context.Context, _, rangeSpec string, rowNumber int, values []string) error {
	if f.readOnly {
		return sheets.ErrReadOnly
	}
	if err := f.errs[tabOf(rangeSpec)]; err != nil {
		return err
	}
	f.updates[rowNumber] = values
	return nil
}

func (f *fakeSource) FindRowByEmail(ctx context.Context, id, rangeSpec, em string) (*sheets.Match, error) {
	rows, err := f.Fetch(ctx, id, rangeSpec)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if strings.EqualFold(strings.TrimSpace(r["email"]), strings.TrimSpace(em)) {
			return &sheets.Match{Row: r, RowNumber: i + 2}, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) FindRow(ctx context.Context, id, rangeSpec, column, value string) (*sheets.Match, error) {
	rows, err := f.Fetch(ctx, id, rangeSpec)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if strings.EqualFold(r[column], value) {
			return &sheets.Match{Row: r, RowNumber: i + 2}, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Headers(_ context.Context, _, rangeSpec string) ([]string, error) {
	tab := tabOf(rangeSpec)
	if err := f.errs[tab]; err != nil {
		return nil, err
	}
	return f.headers[tab], nil
}

// fakeSender records sent emails and can be told to fail.
type fakeSender struct {
	sent []email.SendRequest
	err  error
}

func (f *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if f.err != nil {
		return email.SendResult{}, f.err
	}
	f.sent = append(f.sent, req)
	return email.SendResult{MessageID: "test-id", SentAt: time.Now()}, nil
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	src    *fakeSource
	sender *fakeSender
	tokens *auth.TokenService
	cfg    *config.Config
	server http.Handler
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://app.example.com"
	cfg.Sheets.Mode = mode
	cfg.Sheets.RosterID = "roster-sheet"
	cfg.Sheets.AnnouncementsID = "ann-sheet"
	cfg.Sheets.ResourcesID = "res-sheet"
	cfg.Sheets.ConfigID = "cfg-sheet"
	cfg.Email.NotificationTo = "admin@themenscircle.org"

	src := newFakeSource()
	src.readOnly = mode == config.ModePublished
	src.tabs[roster.RosterTab] = []sheets.Row{
		{"name": "Alice", "email": "alice@example.com", "status": "active", "team": "Blue"},
		{"name": "Pat", "email": "pat@example.com", "status": "pending"},
		{"name": "Sam", "email": "sam@example.com", "status": "sabbatical"},
	}
	src.headers[roster.RosterTab] = []string{"name", "email", "status", "team", "phone", "location", "bio", "photo"}

	sender := &fakeSender{}
	tokens := auth.NewTokenService("test-secret", 15*time.Minute, 30*24*time.Hour)
	rosterSvc := roster.New(src, cfg.Sheets.RosterID)
	handler := NewHandler(cfg, src, rosterSvc, tokens, sender)
	router := NewRouter(handler, auth.NewGuard(tokens), NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests:     1000,
		AuthRateLimitRequests: 1000,
		RateLimitWindow:       time.Minute,
	}))

	return &testEnv{
		src:    src,
		sender: sender,
		tokens: tokens,
		cfg:    cfg,
		server: router.Setup(),
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) sessionToken(t *testing.T) string {
	t.Helper()
	tok, err := e.tokens.IssueSessionToken(auth.Identity{
		Email: "alice@example.com", Name: "Alice", Status: "active", Team: "Blue",
	})
	if err != nil {
		t.Fatalf("IssueSessionToken() error: %v", err)
	}
	return tok
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestAuthRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		senderErr  error
		wantStatus int
		wantError  string
		wantEmails int
	}{
		{
			name:       "missing email",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Email is required",
		},
		{
			name:       "unknown member",
			body:       map[string]string{"email": "stranger@example.com"},
			wantStatus: http.StatusNotFound,
			wantError:  "couldn't find that email",
		},
		{
			name:       "pending member forbidden",
			body:       map[string]string{"email": "pat@example.com"},
			wantStatus: http.StatusForbidden,
			wantError:  "membership status",
		},
		{
			name:       "sabbatical member forbidden",
			body:       map[string]string{"email": "sam@example.com"},
			wantStatus: http.StatusForbidden,
			wantError:  "membership status",
		},
		{
			name:       "active member gets magic link",
			body:       map[string]string{"email": "alice@example.com"},
			wantStatus: http.StatusOK,
			wantEmails: 1,
		},
		{
			name:       "case-insensitive lookup",
			body:       map[string]string{"email": "ALICE@Example.COM"},
			wantStatus: http.StatusOK,
			wantEmails: 1,
		},
		{
			name:       "email dispatch failure",
			body:       map[string]string{"email": "alice@example.com"},
			senderErr:  errors.New("provider down"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "login email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, config.ModePublished)
			env.sender.err = tt.senderErr

			rec := env.request(t, http.MethodPost, "/api/auth/request", "", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" && !strings.Contains(rec.Body.String(), tt.wantError) {
				t.Errorf("body = %q, want containing %q", rec.Body.String(), tt.wantError)
			}
			if len(env.sender.sent) != tt.wantEmails {
				t.Errorf("sent %d emails, want %d", len(env.sender.sent), tt.wantEmails)
			}
			if tt.wantEmails > 0 {
				sent := env.sender.sent[0]
				if sent.To[0] != "alice@example.com" {
					t.Errorf("email to = %v, want alice@example.com", sent.To)
				}
				if !strings.Contains(sent.HTML, "https://app.example.com/#/verify?token=") {
					t.Errorf("email body missing magic link URL: %q", sent.HTML)
				}
			}
		})
	}
}

func TestAuthVerify(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)

	magic, err := env.tokens.IssueMagicToken("alice@example.com", "Alice", "active")
	if err != nil {
		t.Fatalf("IssueMagicToken() error: %v", err)
	}

	t.Run("valid magic token returns session", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/auth/verify", "", map[string]string{"token": magic})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}

		var resp map[string]string
		decodeBody(t, rec, &resp)

		claims, err := env.tokens.Verify(resp["token"], auth.TokenTypeSession)
		if err != nil {
			t.Fatalf("returned token is not a valid session token: %v", err)
		}
		if claims.Team != "Blue" {
			t.Errorf("session team = %q, want Blue from roster", claims.Team)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/auth/verify", "", map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/auth/verify", "", map[string]string{"token": "junk"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("session token rejected as magic", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/auth/verify", "", map[string]string{"token": env.sessionToken(t)})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("member removed from roster", func(t *testing.T) {
		gone, err := env.tokens.IssueMagicToken("ghost@example.com", "Ghost", "active")
		if err != nil {
			t.Fatalf("IssueMagicToken() error: %v", err)
		}
		rec := env.request(t, http.MethodPost, "/api/auth/verify", "", map[string]string{"token": gone})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "User not found") {
			t.Errorf("body = %q, want user-not-found message", rec.Body.String())
		}
	})
}

func TestMembersEndpoint(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)

	t.Run("requires auth", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/members", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "No token provided") {
			t.Errorf("body = %q, want no-token message", rec.Body.String())
		}
	})

	t.Run("returns directory", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/members", env.sessionToken(t), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}

		var members []roster.Member
		decodeBody(t, rec, &members)

		// Pending member excluded; active and sabbatical listed.
		if len(members) != 2 {
			t.Fatalf("got %d members, want 2: %+v", len(members), members)
		}
		if members[0].Name != "Alice" || members[1].Name != "Sam" {
			t.Errorf("members = %+v, want Alice then Sam", members)
		}
	})

	t.Run("expired session token", func(t *testing.T) {
		expired := expiredSessionToken(t, "test-secret")
		rec := env.request(t, http.MethodGet, "/api/members", expired, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)

	rec := env.request(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status field = %v, want ok", resp["status"])
	}
	if resp["mode"] != config.ModePublished {
		t.Errorf("mode field = %v, want published", resp["mode"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, config.ModePublished)

	rec := env.request(t, http.MethodDelete, "/api/members", env.sessionToken(t), nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
