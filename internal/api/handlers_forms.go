// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/email"
	"github.com/standardhuman/tmc-app/internal/logging"
	"github.com/standardhuman/tmc-app/internal/metrics"
	"github.com/standardhuman/tmc-app/internal/roster"
	"github.com/standardhuman/tmc-app/internal/sheets"
	"github.com/standardhuman/tmc-app/internal/validation"
)

type contactBody struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// Contact handles POST /api/contact: the public contact form. The
// submission is forwarded by email with reply-to set to the sender.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var body contactBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Name, email, and message are required")
		return
	}
	if err := validation.ValidateStruct(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	subject, html := email.ContactEmail(body.Name, body.Email, body.Message)
	_, err := h.sender.Send(r.Context(), email.SendRequest{
		To:      []string{h.cfg.Email.NotificationTo},
		Subject: subject,
		HTML:    html,
		ReplyTo: body.Email,
	})
	metrics.RecordEmailSend("contact", err)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Contact notification failed")
		respondError(w, http.StatusInternalServerError, "Unable to send your message right now. Please try again.")
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Contact form forwarded")
	respondSuccess(w)
}

// feedbackBody carries the structured website feedback survey: ratings
// for each area of the site plus free-form comments. Ratings arrive as
// numbers or strings depending on the form control, so they decode as
// json.Number.
type feedbackBody struct {
	Name              string      `json:"name"`
	Overall           json.Number `json:"overall"`
	Design            string      `json:"design"`
	DesignComments    string      `json:"designComments"`
	Directory         json.Number `json:"directory"`
	DirectoryComments string      `json:"directoryComments"`
	Intros            string      `json:"intros"`
	Login             string      `json:"login"`
	LoginComments     string      `json:"loginComments"`
	MissingFeatures   []string    `json:"missingFeatures"`
	MissingOther      string      `json:"missingOther"`
	Bugs              string      `json:"bugs"`
	Other             string      `json:"other"`
}

// submitterName prefers the form's name field, then the session
// identity, then Anonymous.
func (b *feedbackBody) submitterName(claims *auth.Claims) string {
	if name := strings.TrimSpace(b.Name); name != "" {
		return name
	}
	if claims != nil && claims.Name != "" {
		return claims.Name
	}
	return "Anonymous"
}

// Feedback handles POST /api/feedback. The feedback lands in two
// places: a row appended to the feedback tab (API mode only) and a
// notification email. The two writes are independent; one failing does
// not roll back the other, and full failure of both is a 500.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var body feedbackBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Feedback could not be read")
		return
	}

	sheetErr := h.appendFeedbackRow(r, claims, &body)
	emailErr := h.sendFeedbackEmail(r, claims, &body)

	if sheetErr != nil && emailErr != nil {
		respondError(w, http.StatusInternalServerError, "Unable to record your feedback right now. Please try again.")
		return
	}

	msg := "Feedback received successfully"
	if sheetErr != nil || emailErr != nil {
		logging.Ctx(r.Context()).Warn().
			AnErr("sheet_error", sheetErr).
			AnErr("email_error", emailErr).
			Msg("Feedback partially recorded")
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": msg})
}

// appendFeedbackRow writes the survey as one row on the feedback tab.
// The column order matches the tab's layout: timestamp, name, the five
// ratings with their comments, then missing features, bugs, and other.
func (h *Handler) appendFeedbackRow(r *http.Request, claims *auth.Claims, body *feedbackBody) error {
	if h.readOnly() {
		// Published mode cannot write; the email still goes out.
		return nil
	}

	err := h.src.Append(r.Context(), h.cfg.Sheets.RosterID, roster.FeedbackTab+"!A:N", []string{
		time.Now().Format(time.RFC3339),
		body.submitterName(claims),
		body.Overall.String(),
		body.Design,
		body.DesignComments,
		body.Directory.String(),
		body.DirectoryComments,
		body.Intros,
		body.Login,
		body.LoginComments,
		strings.Join(body.MissingFeatures, ", "),
		body.MissingOther,
		body.Bugs,
		body.Other,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Feedback sheet append failed")
	}
	return err
}

func (h *Handler) sendFeedbackEmail(r *http.Request, claims *auth.Claims, body *feedbackBody) error {
	subject, html := email.FeedbackEmail(email.FeedbackSubmission{
		Name:              body.submitterName(claims),
		Overall:           body.Overall.String(),
		Design:            body.Design,
		DesignComments:    body.DesignComments,
		Directory:         body.Directory.String(),
		DirectoryComments: body.DirectoryComments,
		Intros:            body.Intros,
		Login:             body.Login,
		LoginComments:     body.LoginComments,
		MissingFeatures:   strings.Join(body.MissingFeatures, ", "),
		MissingOther:      body.MissingOther,
		Bugs:              body.Bugs,
		Other:             body.Other,
	})
	_, err := h.sender.Send(r.Context(), email.SendRequest{
		To:      []string{h.cfg.Email.NotificationTo},
		Subject: subject,
		HTML:    html,
		ReplyTo: claims.Email,
	})
	metrics.RecordEmailSend("feedback", err)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Feedback notification failed")
	}
	return err
}

type onboardingBody struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
	Photo    string `json:"photo"`
}

// profileColumnAliases maps submitted profile fields to the roster
// header variants they may need to land in.
var profileColumnAliases = map[string][]string{
	"name":     {"name"},
	"phone":    {"cell", "phone", "phone_number"},
	"location": {"location", "city"},
	"bio":      {"bio", "about"},
	"photo":    {"photo", "photo_url", "picture"},
}

// Onboarding handles POST /api/onboarding: updates the caller's roster
// row from the submitted profile. Requires API mode. The read of the
// current row and the write back are not atomic; a concurrent sheet
// edit between them is lost.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	if h.readOnly() {
		respondError(w, http.StatusNotImplemented, msgReadOnly)
		return
	}

	claims := auth.ClaimsFromContext(r.Context())

	var body onboardingBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Profile fields are required")
		return
	}

	match, err := h.roster.Find(r.Context(), claims.Email)
	if err != nil {
		respondError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	rangeSpec := roster.RosterTab + "!A:Z"
	headers, err := h.src.Headers(r.Context(), h.roster.SpreadsheetID(), rangeSpec)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Roster headers fetch failed")
		respondError(w, http.StatusInternalServerError, "Unable to update your profile right now.")
		return
	}

	updates := map[string]string{
		"name":     body.Name,
		"phone":    body.Phone,
		"location": body.Location,
		"bio":      body.Bio,
		"photo":    body.Photo,
	}

	values := mergeRowUpdates(headers, match.Row, updates)
	if err := h.src.Update(r.Context(), h.roster.SpreadsheetID(), rangeSpec, match.RowNumber, values); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Roster row update failed")
		respondError(w, http.StatusInternalServerError, "Unable to update your profile right now.")
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Profile updated")
	respondSuccess(w)
}

// mergeRowUpdates builds a full-width row in header order, taking
// submitted non-empty fields over existing cell values.
func mergeRowUpdates(headers []string, existing sheets.Row, updates map[string]string) []string {
	values := make([]string, len(headers))
	for i, header := range headers {
		values[i] = existing.Get(header)
		for field, newValue := range updates {
			if newValue == "" {
				continue
			}
			for _, alias := range profileColumnAliases[field] {
				if alias == header {
					values[i] = newValue
				}
			}
		}
	}
	return values
}

// Upload handles POST /api/upload. Photo uploads are intentionally
// unsupported; member photos are URLs stored in the sheet.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotImplemented, msgUploadsOff)
}
