// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"time"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/config"
	"github.com/standardhuman/tmc-app/internal/email"
	"github.com/standardhuman/tmc-app/internal/roster"
	"github.com/standardhuman/tmc-app/internal/sheets"
)

// User-facing messages. The wording is load-bearing: the SPA matches
// on some of these strings.
const (
	msgNotInRoster = "We couldn't find that email in our member list. " +
		"If you're interested in The Men's Circle, please use the contact form on our homepage."
	msgStatusDenied = "Your membership status doesn't allow access. Please contact an administrator."
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid or expired token"
	msgUserNotFound = "User not found"
	msgReadOnly     = "This action requires API mode with write access. The server is running in read-only published mode."
	msgUploadsOff   = "Photo uploads are not supported. Add a photo URL to your profile instead."
)

// Tab names for the non-roster workbooks.
const (
	announcementsTab = "Announcements"
	resourcesTab     = "Resources"
	configTab        = "Config"
)

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	cfg     *config.Config
	src     sheets.Source
	roster  *roster.Service
	tokens  *auth.TokenService
	sender  email.Sender
	started time.Time
}

// NewHandler creates a handler with all dependencies wired.
func NewHandler(cfg *config.Config, src sheets.Source, rosterSvc *roster.Service, tokens *auth.TokenService, sender email.Sender) *Handler {
	return &Handler{
		cfg:     cfg,
		src:     src,
		roster:  rosterSvc,
		tokens:  tokens,
		sender:  sender,
		started: time.Now(),
	}
}

// readOnly reports whether the server cannot write to sheets.
func (h *Handler) readOnly() bool {
	return h.cfg.Sheets.Mode != config.ModeAPI
}
