// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package auth issues and verifies the two JWT kinds the app uses:
// short-lived magic tokens carried in login links, and long-lived
// session tokens held by the SPA.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types. A magic token proves ownership of an email address and
// can only be exchanged for a session token; a session token grants
// API access.
const (
	TokenTypeMagic   = "magic"
	TokenTypeSession = "session"
)

// ErrInvalidToken is the single error verification exposes. Signature
// mismatch, expiry, malformed structure, and wrong algorithm all
// collapse into it so callers cannot leak why a token failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried in both token kinds. Team is only populated on
// session tokens.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Team   string `json:"team,omitempty"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Identity is the roster-derived subject a session token is minted for.
type Identity struct {
	Email  string
	Name   string
	Status string
	Team   string
}

// TokenService signs and verifies tokens with a shared HMAC secret.
type TokenService struct {
	secret     []byte
	magicTTL   time.Duration
	sessionTTL time.Duration
}

// NewTokenService creates a token service. TTLs of zero fall back to
// the defaults (15 minutes magic, 30 days session).
func NewTokenService(secret string, magicTTL, sessionTTL time.Duration) *TokenService {
	if magicTTL <= 0 {
		magicTTL = 15 * time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		magicTTL:   magicTTL,
		sessionTTL: sessionTTL,
	}
}

// IssueMagicToken signs a short-lived token embedded in a magic-link
// URL.
func (s *TokenService) IssueMagicToken(email, name, status string) (string, error) {
	return s.sign(Claims{
		Email:  email,
		Name:   name,
		Status: status,
		Type:   TokenTypeMagic,
	}, s.magicTTL)
}

// IssueSessionToken signs a long-lived API token for a verified member.
func (s *TokenService) IssueSessionToken(id Identity) (string, error) {
	return s.sign(Claims{
		Email:  id.Email,
		Name:   id.Name,
		Status: id.Status,
		Team:   id.Team,
		Type:   TokenTypeSession,
	}, s.sessionTTL)
}

func (s *TokenService) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token of the expected type. Any
// failure returns ErrInvalidToken.
func (s *TokenService) Verify(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
