// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

// Package metrics provides Prometheus instrumentation for the TMC App
// backend: HTTP request latency and throughput, upstream spreadsheet
// fetches, outbound email dispatch, and circuit breaker state.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmc_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tmc_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Spreadsheet Source Metrics
	SheetFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_sheet_fetches_total",
			Help: "Total number of upstream spreadsheet fetches",
		},
		[]string{"source", "result"}, // source: published|api, result: success|error
	)

	SheetFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tmc_sheet_fetch_duration_seconds",
			Help:    "Duration of upstream spreadsheet fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SheetWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_sheet_writes_total",
			Help: "Total number of spreadsheet append/update operations",
		},
		[]string{"operation", "result"}, // operation: append|update
	)

	// Email Metrics
	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_emails_sent_total",
			Help: "Total number of outbound emails by kind and result",
		},
		[]string{"kind", "result"}, // kind: magic_link|contact|feedback
	)

	// Circuit Breaker Metrics (published-sheet fetcher)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tmc_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmc_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: success|failure|rejected
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSheetFetch records a spreadsheet fetch outcome.
func RecordSheetFetch(source string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SheetFetchesTotal.WithLabelValues(source, result).Inc()
	SheetFetchDuration.Observe(duration.Seconds())
}

// RecordSheetWrite records a spreadsheet write outcome.
func RecordSheetWrite(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SheetWritesTotal.WithLabelValues(operation, result).Inc()
}

// RecordEmailSend records an outbound email outcome.
func RecordEmailSend(kind string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EmailsSentTotal.WithLabelValues(kind, result).Inc()
}

// StatusLabel converts an HTTP status code to a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
