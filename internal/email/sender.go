// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package email sends the app's transactional mail: magic-link logins,
// contact form notifications, and feedback notifications.
package email

import (
	"context"
	"time"
)

// SendRequest describes one outbound email.
type SendRequest struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult reports a successful dispatch.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender dispatches a single email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
