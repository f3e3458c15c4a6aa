// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/standardhuman/tmc-app/internal/auth"
	"github.com/standardhuman/tmc-app/internal/middleware"
)

// Router assembles the HTTP surface from its parts.
type Router struct {
	handler       *Handler
	guard         *auth.Guard
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router around the given handler and guard.
func NewRouter(handler *Handler, guard *auth.Guard, cm *ChiMiddleware) *Router {
	if cm == nil {
		cm = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		guard:         guard,
		chiMiddleware: cm,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Auth endpoints get the strict rate limit: each request can cost
	// an outbound email.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/request", router.handler.AuthRequest)
		r.Post("/verify", router.handler.AuthVerify)
	})

	// Public endpoints.
	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", router.handler.Health)
		r.Post("/contact", router.handler.Contact)

		// Member-only endpoints behind the session token guard.
		r.Group(func(r chi.Router) {
			r.Use(router.guard.Authenticate)

			r.Get("/members", router.handler.Members)
			r.Get("/announcements", router.handler.Announcements)
			r.Get("/resources", router.handler.Resources)
			r.Get("/config", router.handler.ConfigGet)
			r.Post("/config", router.handler.ConfigPost)
			r.Post("/feedback", router.handler.Feedback)
			r.Post("/onboarding", router.handler.Onboarding)
			r.Post("/upload", router.handler.Upload)
		})
	})

	// Prometheus metrics for scraping; not part of the public API.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
