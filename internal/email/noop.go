// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package email

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/standardhuman/tmc-app/internal/logging"
)

// NoopSender logs emails instead of sending them. This is the default
// in development, where the logged body is how magic links get to the
// tester.
type NoopSender struct{}

// NewNoopSender creates a logging-only sender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email and reports success.
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	logging.Ctx(ctx).Info().
		Strs("to", req.To).
		Str("subject", req.Subject).
		Str("body", req.HTML).
		Msg("[NOOP EMAIL] Would send")

	return SendResult{
		MessageID: fmt.Sprintf("noop-%s", uuid.New().String()),
		SentAt:    time.Now(),
	}, nil
}
