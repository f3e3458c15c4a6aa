// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/standardhuman/tmc-app/internal/logging"
)

// Members handles GET /api/members: the member directory.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.roster.Members(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Member directory fetch failed")
		respondError(w, http.StatusInternalServerError, "Unable to load the member directory right now.")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// announcement is a shaped announcements row.
type announcement struct {
	Date   string `json:"date"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// announcementDateLayouts are tried in order when sorting by date.
var announcementDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
}

// Announcements handles GET /api/announcements, newest first.
func (h *Handler) Announcements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.src.Fetch(r.Context(), h.cfg.Sheets.AnnouncementsID, announcementsTab+"!A:Z")
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Announcements fetch failed")
		respondError(w, http.StatusInternalServerError, "Unable to load announcements right now.")
		return
	}

	items := make([]announcement, 0, len(rows))
	for _, row := range rows {
		items = append(items, announcement{
			Date:   row.Get("date"),
			Title:  row.Get("title"),
			Body:   row.First("body", "content"),
			Author: row.Get("author"),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return parseAnnouncementDate(items[i].Date).After(parseAnnouncementDate(items[j].Date))
	})

	respondJSON(w, http.StatusOK, items)
}

// parseAnnouncementDate parses a sheet date cell; unparseable dates
// sort last.
func parseAnnouncementDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range announcementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// resource is a shaped resources row.
type resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Content     string `json:"content"`
}

// Resources handles GET /api/resources.
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	rows, err := h.src.Fetch(r.Context(), h.cfg.Sheets.ResourcesID, resourcesTab+"!A:Z")
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Resources fetch failed")
		respondError(w, http.StatusInternalServerError, "Unable to load resources right now.")
		return
	}

	items := make([]resource, 0, len(rows))
	for i, row := range rows {
		res := resource{
			ID:          row.Get("id"),
			Title:       row.Get("title"),
			Description: row.Get("description"),
			Category:    row.Get("category"),
			Content:     row.Get("content"),
		}
		if res.ID == "" {
			res.ID = fmt.Sprintf("resource-%d", i)
		}
		if res.Category == "" {
			res.Category = "General"
		}
		items = append(items, res)
	}

	respondJSON(w, http.StatusOK, items)
}

// ConfigGet handles GET /api/config: the two-column key/value tab as
// an object. An upstream failure degrades to an empty object so the
// SPA falls back to its defaults instead of erroring.
func (h *Handler) ConfigGet(w http.ResponseWriter, r *http.Request) {
	rows, err := h.src.Fetch(r.Context(), h.cfg.Sheets.ConfigID, configTab+"!A:B")
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Config fetch failed, serving empty config")
		respondJSON(w, http.StatusOK, map[string]string{})
		return
	}

	cfg := make(map[string]string, len(rows))
	for _, row := range rows {
		key := row.Get("key")
		if key == "" {
			continue
		}
		cfg[key] = row.Get("value")
	}

	respondJSON(w, http.StatusOK, cfg)
}

// ConfigPost handles POST /api/config: upserts key/value pairs into
// the config tab. Requires API mode; published mode is read-only.
func (h *Handler) ConfigPost(w http.ResponseWriter, r *http.Request) {
	if h.readOnly() {
		respondError(w, http.StatusNotImplemented, msgReadOnly)
		return
	}

	var updates map[string]string
	if err := decodeJSON(r, &updates); err != nil || len(updates) == 0 {
		respondError(w, http.StatusBadRequest, "Config values are required")
		return
	}

	rangeSpec := configTab + "!A:B"
	for key, value := range updates {
		match, err := h.src.FindRow(r.Context(), h.cfg.Sheets.ConfigID, rangeSpec, "key", key)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("Config lookup failed")
			respondError(w, http.StatusInternalServerError, "Unable to save config right now.")
			return
		}

		if match != nil && match.RowNumber > 0 {
			err = h.src.Update(r.Context(), h.cfg.Sheets.ConfigID, rangeSpec, match.RowNumber, []string{key, value})
		} else {
			err = h.src.Append(r.Context(), h.cfg.Sheets.ConfigID, rangeSpec, []string{key, value})
		}
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("Config upsert failed")
			respondError(w, http.StatusInternalServerError, "Unable to save config right now.")
			return
		}
	}

	respondSuccess(w)
}
