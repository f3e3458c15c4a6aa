// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/standardhuman/tmc-app/internal/logging"
)

// contextKey is a private type for context values set by this package.
type contextKey string

// ClaimsContextKey is where the guard stores the verified *Claims.
const ClaimsContextKey contextKey = "auth_claims"

// Guard protects member-only routes with session token checks.
type Guard struct {
	tokens *TokenService
}

// NewGuard creates a guard backed by the given token service.
func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate requires a valid session token on the request. It reads
// the Authorization header, verifies the bearer token, and stores the
// claims in the request context. There is no roster lookup here; a
// member removed from the roster keeps API access until the session
// token expires.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			unauthorized(w, "No token provided")
			return
		}

		claims, err := g.tokens.Verify(tokenString, TokenTypeSession)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Msg("Session token rejected")
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext retrieves the verified claims stored by
// Authenticate. Returns nil when the request did not pass the guard.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// extractBearerToken pulls the token out of an
// "Authorization: Bearer <token>" header. The scheme comparison is
// case-insensitive; a bare token without the scheme is rejected.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
