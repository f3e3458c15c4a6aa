// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/standardhuman/tmc-app/internal/logging"
)

// ResendSender sends emails through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender with the given API key and default
// from address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send dispatches one email via Resend.
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Strs("to", req.To).Str("subject", req.Subject).Msg("Resend send failed")
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	logging.Ctx(ctx).Info().Str("message_id", sent.Id).Strs("to", req.To).Str("subject", req.Subject).Msg("Email sent")
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
