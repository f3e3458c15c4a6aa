// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package sheets

import "strings"

// Row is a single sheet row keyed by normalized header names. Absent
// columns read as the empty string, never as a missing-key panic.
type Row map[string]string

// Get returns the value for the given normalized column, or "".
func (r Row) Get(key string) string {
	return r[key]
}

// First returns the first non-empty value among the given columns.
// Used to resolve header aliases, e.g. First("email", "e_mail").
func (r Row) First(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// NormalizeHeader canonicalizes a raw header cell: lower-case, runs of
// whitespace become a single underscore, and any character outside
// [a-z0-9_] is stripped. Idempotent, so normalizing twice is safe.
//
//	"E-Mail Address" -> "email_address"
//	"First  Name"    -> "first_name"
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))

	var b strings.Builder
	b.Grow(len(h))
	inSpace := false
	for _, c := range h {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte('_')
			inSpace = false
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
