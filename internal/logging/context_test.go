// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	if a == "" || b == "" {
		t.Fatal("GenerateRequestID() returned empty ID")
	}
	if a == b {
		t.Errorf("GenerateRequestID() returned duplicate ID %q", a)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() on bare context = %q, want empty", got)
	}
}

func TestCtxEnrichesWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()

	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	ctx := ContextWithRequestID(context.Background(), "req-456")
	Ctx(ctx).Info().Msg("handled")

	if !strings.Contains(buf.String(), `"request_id":"req-456"`) {
		t.Errorf("output missing request_id field: %s", buf.String())
	}
}

func TestCtxPrefersStoredLogger(t *testing.T) {
	var buf bytes.Buffer

	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	Ctx(ctx).Info().Msg("from stored logger")

	if !strings.Contains(buf.String(), "from stored logger") {
		t.Errorf("stored logger not used: %s", buf.String())
	}
}
