// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package sheets reads and writes Google Sheets data. Sheets act as the
// app's database: each tab is a table whose first row is the header.
//
// Two access strategies are supported. PublishedSource fetches the
// anonymous CSV export of a published sheet and can only read.
// APISource talks to the Google Sheets API with service-account
// credentials and can also append and update rows.
package sheets

import "strings"

// ParseCSV parses raw CSV text into rows keyed by normalized headers.
//
// The first physical line is always the header line and never produces
// a data row. Quoting follows the Google CSV export dialect: fields may
// be wrapped in double quotes, a doubled quote inside a quoted field is
// a literal quote, and separators and newlines inside quotes are data.
// Both \n and \r\n terminate lines; a bare \r outside quotes is
// dropped. Fields are trimmed of surrounding whitespace and lines whose
// fields are all empty are skipped entirely.
//
// Rows carry exactly the header's columns: extra fields on a data line
// are discarded and missing trailing fields read as empty strings.
func ParseCSV(data string) []Row {
	lines := splitCSV(data)
	if len(lines) < 1 {
		return []Row{}
	}

	headers := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, fields := range lines[1:] {
		row := Row{}
		for i, h := range headers {
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CSVHeaders returns the normalized header row of raw CSV text, in
// sheet order. Returns nil for empty input.
func CSVHeaders(data string) []string {
	lines := splitCSV(data)
	if len(lines) == 0 {
		return nil
	}
	headers := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		headers[i] = NormalizeHeader(h)
	}
	return headers
}

// splitCSV tokenizes CSV text into lines of trimmed fields, skipping
// lines whose fields are all empty.
func splitCSV(data string) [][]string {
	var (
		lines   [][]string
		current []string
		field   strings.Builder
		inQuote bool
	)

	endField := func() {
		current = append(current, strings.TrimSpace(field.String()))
		field.Reset()
	}

	endLine := func() {
		endField()
		for _, f := range current {
			if f != "" {
				lines = append(lines, current)
				break
			}
		}
		current = nil
	}

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inQuote {
			if c == '"' {
				if i+1 < len(data) && data[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuote = false
				}
			} else {
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case ',':
			endField()
		case '\n':
			endLine()
		case '\r':
			// \r\n collapses to one line break, a bare \r is dropped
			if i+1 < len(data) && data[i+1] == '\n' {
				endLine()
				i++
			}
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(current) > 0 {
		endLine()
	}

	return lines
}
