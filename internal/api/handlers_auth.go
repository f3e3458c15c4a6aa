// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/email"
	"github.com/standardhuman/tmc-app/internal/logging"
	"github.com/standardhuman/tmc-app/internal/metrics"
	"github.com/standardhuman/tmc-app/internal/roster"
)

type authRequestBody struct {
	Email string `json:"email"`
}

type authVerifyBody struct {
	Token string `json:"token"`
}

// AuthRequest handles POST /api/auth/request: looks the email up in
// the roster and, for active members, emails a magic login link.
func (h *Handler) AuthRequest(w http.ResponseWriter, r *http.Request) {
	var body authRequestBody
	if err := decodeJSON(r, &body); err != nil || strings.TrimSpace(body.Email) == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}
	reqEmail := strings.TrimSpace(body.Email)

	match, err := h.roster.Find(r.Context(), reqEmail)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			respondError(w, http.StatusNotFound, msgNotInRoster)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Roster lookup failed")
		respondError(w, http.StatusInternalServerError, "Unable to check membership right now. Please try again.")
		return
	}

	member := roster.FromRow(match.Row)
	if !roster.CanLogin(member.Status) {
		respondError(w, http.StatusForbidden, msgStatusDenied)
		return
	}

	token, err := h.tokens.IssueMagicToken(member.Email, member.Name, member.Status)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Magic token signing failed")
		respondError(w, http.StatusInternalServerError, "Unable to create login link. Please try again.")
		return
	}

	link := fmt.Sprintf("%s/#/verify?token=%s", strings.TrimRight(h.cfg.Server.BaseURL, "/"), token)
	subject, html := email.MagicLinkEmail(member.Name, link)

	_, err = h.sender.Send(r.Context(), email.SendRequest{
		To:      []string{member.Email},
		Subject: subject,
		HTML:    html,
	})
	metrics.RecordEmailSend("magic_link", err)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Magic link email failed")
		respondError(w, http.StatusInternalServerError, "Unable to send login email. Please try again.")
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Magic link sent")
	respondSuccess(w)
}

// AuthVerify handles POST /api/auth/verify: exchanges a magic token
// for a session token, re-checking the roster so removed members
// cannot complete login.
func (h *Handler) AuthVerify(w http.ResponseWriter, r *http.Request) {
	var body authVerifyBody
	if err := decodeJSON(r, &body); err != nil || strings.TrimSpace(body.Token) == "" {
		respondError(w, http.StatusBadRequest, "Token is required")
		return
	}

	claims, err := h.tokens.Verify(strings.TrimSpace(body.Token), auth.TokenTypeMagic)
	if err != nil {
		respondError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	match, err := h.roster.Find(r.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, msgUserNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Roster lookup failed")
		respondError(w, http.StatusInternalServerError, "Unable to verify membership right now. Please try again.")
		return
	}

	member := roster.FromRow(match.Row)
	session, err := h.tokens.IssueSessionToken(auth.Identity{
		Email:  member.Email,
		Name:   member.Name,
		Status: member.Status,
		Team:   member.Team,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Session token signing failed")
		respondError(w, http.StatusInternalServerError, "Unable to complete login. Please try again.")
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Login completed")
	respondJSON(w, http.StatusOK, map[string]string{"token": session})
}
