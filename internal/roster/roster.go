// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package roster reads the member roster sheet and applies membership
// policy: who exists, who may log in, and who shows up in the member
// directory.
package roster

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/standardhuman/tmc-app/internal/logging"
	"github.com/standardhuman/tmc-app/internal/sheets"
)

// Membership statuses as they appear in the roster sheet.
const (
	StatusActive     = "active"
	StatusSabbatical = "sabbatical"
)

// Sheet tabs inside the roster workbook.
const (
	RosterTab   = "Active Men"
	IntrosTab   = "INTROS"
	FeedbackTab = "Website Feedback"
)

// ErrNotFound is returned when an email has no roster row.
var ErrNotFound = errors.New("member not found")

// Member is a directory entry shaped for the API. The field set mirrors
// the roster sheet's profile columns; the directory page renders most of
// them.
type Member struct {
	Name            string `json:"name"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Team            string `json:"team"`
	Position        string `json:"position"`
	Status          string `json:"status"`
	City            string `json:"city"`
	State           string `json:"state"`
	Website         string `json:"website"`
	YearJoined      string `json:"yearJoined"`
	Sponsor         string `json:"sponsor"`
	Occupation      string `json:"occupation"`
	Identities      string `json:"identities"`
	PurposeEssence  string `json:"purposeEssence"`
	PurposeBlessing string `json:"purposeBlessing"`
	PurposeMission  string `json:"purposeMission"`
	PurposeMessage  string `json:"purposeMessage"`
	PhotoURL        string `json:"photoUrl"`
	Intro           string `json:"intro"`
	IntroDate       string `json:"introDate"`
}

// Service wraps the sheet source for the roster workbook.
type Service struct {
	src           sheets.Source
	spreadsheetID string
}

// New creates a roster service reading the given workbook.
func New(src sheets.Source, spreadsheetID string) *Service {
	return &Service{src: src, spreadsheetID: spreadsheetID}
}

// SpreadsheetID returns the roster workbook ID, for callers that write
// to its other tabs.
func (s *Service) SpreadsheetID() string {
	return s.spreadsheetID
}

// Source exposes the underlying sheet source.
func (s *Service) Source() sheets.Source {
	return s.src
}

// Find looks up a member by email, case-insensitively. Returns
// ErrNotFound when no roster row carries the address.
func (s *Service) Find(ctx context.Context, email string) (*sheets.Match, error) {
	match, err := s.src.FindRowByEmail(ctx, s.spreadsheetID, RosterTab+"!A:Z", email)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

// CanLogin reports whether a member with the given status may request
// a magic link. Sabbatical members stay visible in the directory but
// cannot log in.
func CanLogin(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusActive)
}

// InDirectory reports whether a member with the given status appears
// in the member directory.
func InDirectory(status string) bool {
	st := strings.ToLower(strings.TrimSpace(status))
	return st == StatusActive || st == StatusSabbatical
}

// Members returns the directory: roster rows merged with intros,
// filtered to listed statuses with an email address, sorted by name.
// The roster and intros tabs are fetched concurrently.
func (s *Service) Members(ctx context.Context) ([]Member, error) {
	var (
		wg         sync.WaitGroup
		rosterRows []sheets.Row
		introRows  []sheets.Row
		rosterErr  error
		introErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		rosterRows, rosterErr = s.src.Fetch(ctx, s.spreadsheetID, RosterTab+"!A:Z")
	}()
	go func() {
		defer wg.Done()
		introRows, introErr = s.src.Fetch(ctx, s.spreadsheetID, IntrosTab+"!A:Z")
	}()
	wg.Wait()

	if rosterErr != nil {
		return nil, rosterErr
	}
	if introErr != nil {
		// The directory still works without intros.
		logging.Ctx(ctx).Warn().Err(introErr).Msg("Intros tab fetch failed")
		introRows = nil
	}

	intros := indexIntros(introRows)

	members := make([]Member, 0, len(rosterRows))
	for _, row := range rosterRows {
		m := FromRow(row)
		if m.Email == "" || !InDirectory(m.Status) {
			continue
		}
		if in, ok := intros[strings.ToLower(m.Name)]; ok {
			m.Intro = in.text
			m.IntroDate = in.dateSent
		}
		members = append(members, m)
	}

	sort.Slice(members, func(i, j int) bool {
		return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
	})

	return members, nil
}

// FromRow shapes a roster row into a Member, resolving the column
// aliases seen across versions of the sheet. The roster stores phone
// numbers under "Cell" and the long identities column header normalizes
// to identities_use_laptop_not_phone_to_update.
func FromRow(row sheets.Row) Member {
	return Member{
		Name:            DisplayName(row),
		FirstName:       row.Get("first_name"),
		LastName:        row.Get("last_name"),
		Email:           Email(row),
		Phone:           row.First("cell", "phone", "phone_number"),
		Team:            Team(row),
		Position:        row.Get("current_position"),
		Status:          strings.ToLower(row.Get("status")),
		City:            row.First("city", "location"),
		State:           row.Get("state"),
		Website:         row.Get("website"),
		YearJoined:      row.Get("year_joined"),
		Sponsor:         row.Get("sponsor"),
		Occupation:      row.Get("occupation"),
		Identities:      row.Get("identities_use_laptop_not_phone_to_update"),
		PurposeEssence:  row.Get("purpose_expressed_as_essence"),
		PurposeBlessing: row.Get("purpose_expressed_as_blessing"),
		PurposeMission:  row.Get("purpose_expressed_as_mission"),
		PurposeMessage:  row.Get("purpose_expressed_as_message"),
		PhotoURL:        row.First("photo_url", "photo", "picture"),
	}
}

// Email resolves the email column aliases.
func Email(row sheets.Row) string {
	return strings.TrimSpace(row.First("email", "e_mail", "email_address"))
}

// DisplayName resolves the name column, falling back to first and last
// name columns joined with a space.
func DisplayName(row sheets.Row) string {
	if name := row.Get("name"); name != "" {
		return name
	}
	first := row.Get("first_name")
	last := row.Get("last_name")
	return strings.TrimSpace(first + " " + last)
}

// Team resolves the team column aliases.
func Team(row sheets.Row) string {
	return row.First("team", "current_team")
}

// intro is one entry from the intros tab.
type intro struct {
	text     string
	dateSent string
}

// indexIntros maps lower-cased member names to their intro. The intros
// tab keeps names in an unlabeled first column, which the CSV parser
// surfaces under the empty header key; the letter body lives in the
// "text" column with its send date alongside.
func indexIntros(rows []sheets.Row) map[string]intro {
	intros := make(map[string]intro, len(rows))
	for _, row := range rows {
		name := row.First("", "name")
		if name == "" {
			continue
		}
		text := row.First("text", "intro")
		if text == "" {
			continue
		}
		intros[strings.ToLower(strings.TrimSpace(name))] = intro{
			text:     text,
			dateSent: row.Get("date_sent"),
		}
	}
	return intros
}
