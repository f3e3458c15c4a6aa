// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/standardhuman/tmc-app/internal/metrics"
)

// APISource reads and writes sheets through the authenticated Google
// Sheets API using a service account. Unlike PublishedSource it honors
// full A1 ranges and supports Append and Update.
type APISource struct {
	svc *gsheets.Service
}

// NewAPISource builds an API source from service-account JSON
// credentials.
func NewAPISource(ctx context.Context, credentialsJSON string) (*APISource, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &APISource{svc: svc}, nil
}

// Fetch returns the data rows of the given range. The first returned
// row is treated as the header and normalized the same way the CSV
// parser normalizes it; rows whose cells are all empty are skipped.
func (s *APISource) Fetch(ctx context.Context, spreadsheetID, rangeSpec string) ([]Row, error) {
	start := time.Now()
	values, err := s.values(ctx, spreadsheetID, rangeSpec)
	metrics.RecordSheetFetch("api", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(values) < 1 {
		return []Row{}, nil
	}

	headers := normalizeHeaderRow(values[0])

	rows := make([]Row, 0, len(values)-1)
	for _, cells := range values[1:] {
		row, empty := buildRow(headers, cells)
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append adds a row after the last data row of the range.
func (s *APISource) Append(ctx context.Context, spreadsheetID, rangeSpec string, values []string) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(values)}}

	_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, rangeSpec, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	metrics.RecordSheetWrite("append", err)
	if err != nil {
		return fmt.Errorf("sheet append failed: %w", err)
	}
	return nil
}

// Update overwrites the given 1-indexed physical row, starting at
// column A.
func (s *APISource) Update(ctx context.Context, spreadsheetID, rangeSpec string, rowNumber int, values []string) error {
	if rowNumber < 2 {
		return fmt.Errorf("invalid row number %d: data rows start at 2", rowNumber)
	}

	target := fmt.Sprintf("%s!A%d", sheetName(rangeSpec), rowNumber)
	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(values)}}

	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	metrics.RecordSheetWrite("update", err)
	if err != nil {
		return fmt.Errorf("sheet update failed: %w", err)
	}
	return nil
}

// FindRowByEmail scans the range for the first row whose email column
// matches. The returned row number is physical (header = 1), so it can
// be fed straight back into Update.
func (s *APISource) FindRowByEmail(ctx context.Context, spreadsheetID, rangeSpec, email string) (*Match, error) {
	values, err := s.values(ctx, spreadsheetID, rangeSpec)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}

	headers := normalizeHeaderRow(values[0])

	for i, cells := range values[1:] {
		row, empty := buildRow(headers, cells)
		if empty {
			continue
		}
		if candidate := rowEmail(row); candidate != "" && valueMatches(candidate, email) {
			return &Match{Row: row, RowNumber: i + 2}, nil
		}
	}
	return nil, nil
}

// FindRow scans the range for the first case-insensitive match on the
// given column, reporting the physical row number.
func (s *APISource) FindRow(ctx context.Context, spreadsheetID, rangeSpec, column, value string) (*Match, error) {
	values, err := s.values(ctx, spreadsheetID, rangeSpec)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}

	headers := normalizeHeaderRow(values[0])

	for i, cells := range values[1:] {
		row, empty := buildRow(headers, cells)
		if empty {
			continue
		}
		if candidate := row.Get(column); candidate != "" && valueMatches(candidate, value) {
			return &Match{Row: row, RowNumber: i + 2}, nil
		}
	}
	return nil, nil
}

// Headers returns the range's normalized header row in sheet order.
func (s *APISource) Headers(ctx context.Context, spreadsheetID, rangeSpec string) ([]string, error) {
	values, err := s.values(ctx, spreadsheetID, rangeSpec)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return normalizeHeaderRow(values[0]), nil
}

func (s *APISource) values(ctx context.Context, spreadsheetID, rangeSpec string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheet fetch failed: %w", err)
	}
	return resp.Values, nil
}

// normalizeHeaderRow converts a raw header row from the API into
// normalized column names.
func normalizeHeaderRow(cells []interface{}) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = NormalizeHeader(cellString(c))
	}
	return headers
}

// buildRow maps cells onto headers and reports whether every cell was
// empty. Extra cells beyond the header count are discarded, missing
// trailing cells read as "".
func buildRow(headers []string, cells []interface{}) (Row, bool) {
	row := Row{}
	empty := true
	for i, h := range headers {
		v := ""
		if i < len(cells) {
			v = strings.TrimSpace(cellString(cells[i]))
		}
		if v != "" {
			empty = false
		}
		row[h] = v
	}
	return row, empty
}

func cellString(c interface{}) string {
	if s, ok := c.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", c)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
