// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/standardhuman/tmc-app/internal/logging"
	"github.com/standardhuman/tmc-app/internal/metrics"
)

// publishedExportURL is the anonymous CSV export endpoint for sheets
// published to the web.
const publishedExportURL = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s"

// maxCSVBody caps the response size read from the export endpoint.
const maxCSVBody = 10 << 20 // 10MB

// PublishedSource reads sheets through the public CSV export. It needs
// no credentials but cannot write; Append and Update return
// ErrReadOnly. Fetches go through a circuit breaker so a flapping
// Google endpoint fails fast instead of stacking up request timeouts.
type PublishedSource struct {
	client *http.Client
	cb     *gobreaker.CircuitBreaker[string]
	name   string
}

// NewPublishedSource creates a published-CSV source with the given
// per-fetch timeout.
//
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewPublishedSource(timeout time.Duration) *PublishedSource {
	cbName := "published-sheets"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &PublishedSource{
		client: &http.Client{Timeout: timeout},
		cb:     cb,
		name:   cbName,
	}
}

// Fetch downloads and parses the CSV export of a tab. A rangeSpec with
// an A1 suffix loses the suffix: the export endpoint addresses whole
// tabs only.
func (s *PublishedSource) Fetch(ctx context.Context, spreadsheetID, rangeSpec string) ([]Row, error) {
	start := time.Now()
	body, err := s.fetchCSV(ctx, spreadsheetID, sheetName(rangeSpec))
	metrics.RecordSheetFetch("published", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return ParseCSV(body), nil
}

// Append is unsupported for published sheets.
func (s *PublishedSource) Append(_ context.Context, _, _ string, _ []string) error {
	return ErrReadOnly
}

// Update is unsupported for published sheets.
func (s *PublishedSource) Update(_ context.Context, _, _ string, _ int, _ []string) error {
	return ErrReadOnly
}

// FindRowByEmail fetches the tab and scans for the address. The
// reported row number is 0 because the export endpoint cannot address
// physical rows.
func (s *PublishedSource) FindRowByEmail(ctx context.Context, spreadsheetID, rangeSpec, email string) (*Match, error) {
	rows, err := s.Fetch(ctx, spreadsheetID, rangeSpec)
	if err != nil {
		return nil, err
	}
	if m := findByEmail(rows, email, 0); m != nil {
		return &Match{Row: m.Row, RowNumber: 0}, nil
	}
	return nil, nil
}

// FindRow fetches the tab and scans the given column. The reported row
// number is 0; the export endpoint cannot address physical rows.
func (s *PublishedSource) FindRow(ctx context.Context, spreadsheetID, rangeSpec, column, value string) (*Match, error) {
	rows, err := s.Fetch(ctx, spreadsheetID, rangeSpec)
	if err != nil {
		return nil, err
	}
	if m := findByColumn(rows, column, value, 0); m != nil {
		return &Match{Row: m.Row, RowNumber: 0}, nil
	}
	return nil, nil
}

// Headers returns the tab's normalized header row.
func (s *PublishedSource) Headers(ctx context.Context, spreadsheetID, rangeSpec string) ([]string, error) {
	body, err := s.fetchCSV(ctx, spreadsheetID, sheetName(rangeSpec))
	if err != nil {
		return nil, err
	}
	return CSVHeaders(body), nil
}

// fetchCSV performs the HTTP GET through the circuit breaker.
func (s *PublishedSource) fetchCSV(ctx context.Context, spreadsheetID, tab string) (string, error) {
	body, err := s.cb.Execute(func() (string, error) {
		return s.doFetch(ctx, spreadsheetID, tab)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
		}
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	return body, nil
}

func (s *PublishedSource) doFetch(ctx context.Context, spreadsheetID, tab string) (string, error) {
	u := fmt.Sprintf(publishedExportURL, url.PathEscape(spreadsheetID), url.QueryEscape(tab))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sheet fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sheet fetch failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVBody))
	if err != nil {
		return "", fmt.Errorf("failed to read sheet body: %w", err)
	}

	return string(data), nil
}

// stateToFloat converts circuit breaker state to a metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a log label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
