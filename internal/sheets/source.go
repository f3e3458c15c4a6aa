// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package sheets

import (
	"context"
	"errors"
	"strings"
)

// ErrReadOnly is returned by write operations on a source that cannot
// write, i.e. the published-CSV strategy.
var ErrReadOnly = errors.New("sheet source is read-only")

// Match is the result of a row lookup. RowNumber is the 1-indexed
// physical row in the sheet (the header is row 1); sources that cannot
// address rows report 0.
type Match struct {
	Row       Row
	RowNumber int
}

// Source reads and writes one spreadsheet tab at a time. A rangeSpec is
// a sheet name optionally followed by an A1 range, e.g. "Active Men" or
// "Config!A:B". Implementations decide how much of the range they can
// honor.
type Source interface {
	// Fetch returns all data rows of the tab, keyed by normalized
	// headers.
	Fetch(ctx context.Context, spreadsheetID, rangeSpec string) ([]Row, error)

	// Append adds a row of values after the last data row.
	Append(ctx context.Context, spreadsheetID, rangeSpec string, values []string) error

	// Update overwrites the given 1-indexed physical row.
	Update(ctx context.Context, spreadsheetID, rangeSpec string, rowNumber int, values []string) error

	// FindRowByEmail locates the first row whose email column matches
	// the given address, case-insensitively. Returns (nil, nil) when no
	// row matches.
	FindRowByEmail(ctx context.Context, spreadsheetID, rangeSpec, email string) (*Match, error)

	// FindRow locates the first row whose column equals value,
	// case-insensitively. Returns (nil, nil) when no row matches.
	FindRow(ctx context.Context, spreadsheetID, rangeSpec, column, value string) (*Match, error)

	// Headers returns the tab's normalized header row in sheet order,
	// so callers can build full-width rows for Update.
	Headers(ctx context.Context, spreadsheetID, rangeSpec string) ([]string, error)
}

// emailColumns are the normalized header aliases an email address may
// hide behind across the community's sheets.
var emailColumns = []string{"email", "e_mail", "email_address"}

// rowEmail extracts the email address from a row via the alias table.
func rowEmail(r Row) string {
	return r.First(emailColumns...)
}

// valueMatches compares two cell values case-insensitively after
// trimming.
func valueMatches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// findByColumn scans rows for the first case-insensitive match on the
// given column. offset is the physical row number of the first data
// row.
func findByColumn(rows []Row, column, value string, offset int) *Match {
	for i, r := range rows {
		if candidate := r.Get(column); candidate != "" && strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(value)) {
			return &Match{Row: r, RowNumber: offset + i}
		}
	}
	return nil
}

// findByEmail scans rows for the first email match. offset is the
// physical row number of the first data row (2 when the header is row
// 1) so callers can report addressable positions.
func findByEmail(rows []Row, email string, offset int) *Match {
	for i, r := range rows {
		if candidate := rowEmail(r); candidate != "" && valueMatches(candidate, email) {
			return &Match{Row: r, RowNumber: offset + i}
		}
	}
	return nil
}

// sheetName strips an A1 range suffix from a rangeSpec, leaving the
// bare tab name: "Config!A:B" -> "Config".
func sheetName(rangeSpec string) string {
	if idx := strings.Index(rangeSpec, "!"); idx >= 0 {
		return rangeSpec[:idx]
	}
	return rangeSpec
}
