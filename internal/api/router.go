// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stagegatehq/stagegate/internal/auth"
	"github.com/stagegatehq/stagegate/internal/config"
	"github.com/stagegatehq/stagegate/internal/database"
	"github.com/stagegatehq/stagegate/internal/middleware"
	"github.com/stagegatehq/stagegate/internal/models"
)

// Router wires handlers, the access gate and the middleware stack.
type Router struct {
	handler *Handler
	gate    *middleware.Gate
	stack   *middleware.Stack
}

// NewRouter creates the router. authConfig must be the full auth
// configuration; the gate only uses its edge-safe parts.
func NewRouter(cfg *config.Config, db *database.DB, authConfig *auth.Config) *Router {
	return &Router{
		handler: NewHandler(cfg, db, authConfig),
		gate:    middleware.NewGate(authConfig),
		stack:   middleware.NewStack(cfg.Server, cfg.API),
	}
}

// Setup builds the HTTP handler tree. The path layout is what the
// access gate classifies on, so route placement is part of the
// authorization model:
//
//	/api/auth/*            auth endpoints, manage their own checks
//	/auth/*                sign-in forms, signed-out users only
//	/admin/*               ADMIN, GATEKEEPER
//	/reviews, */review     ADMIN, GATEKEEPER, REVIEWER
//	/projects/create,edit  ADMIN, PROJECT_LEAD, GATEKEEPER
//	/reports/*             ADMIN, GATEKEEPER, PROJECT_LEAD, REVIEWER
//	everything else        any authenticated user
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.stack.CORS())
	r.Use(middleware.Prometheus)

	// Operational endpoints sit outside the gate: probes and scrapers
	// carry no session.
	r.Get("/healthz", rt.handler.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Everything below passes the access gate.
	r.Group(func(r chi.Router) {
		r.Use(rt.gate.Handler)

		r.Route("/api/auth", func(r chi.Router) {
			r.Use(rt.stack.RateLimitAuth())
			r.Post("/login", rt.handler.Login)
			r.Post("/register", rt.handler.Register)
			r.Post("/logout", rt.handler.Logout)
			r.Get("/session", rt.handler.Session)
			r.Post("/session/refresh", rt.handler.RefreshSession)
			r.Post("/new-verification", rt.handler.NewVerification)
			r.Post("/reset", rt.handler.RequestPasswordReset)
			r.Post("/new-password", rt.handler.NewPassword)
			r.Get("/oauth/{provider}/start", rt.handler.OAuthStart)
			r.Get("/oauth/{provider}/callback", rt.handler.OAuthCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.stack.RateLimit())

			r.Get("/", rt.handler.Home)
			r.Get("/dashboard", rt.handler.Dashboard)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.handler.ListProjects)
				r.Post("/create", rt.handler.CreateProject)
				r.Get("/{id}", rt.handler.GetProject)
				r.Put("/{id}/edit", rt.handler.UpdateProject)
				r.Delete("/{id}/edit", rt.handler.DeleteProject)
				r.Post("/{id}/review", rt.handler.ScheduleReview)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", rt.handler.ListReviews)
				r.Get("/{id}", rt.handler.GetReview)
				r.Post("/{id}/decide", rt.handler.DecideReview)
			})

			r.Route("/clusters", func(r chi.Router) {
				r.Get("/", rt.handler.ListClusters)
				r.Get("/{id}", rt.handler.GetCluster)
				// Cluster mutation is a portfolio-shaping action; the
				// URL shape alone does not encode that privilege.
				r.With(middleware.RequireRole(models.RoleAdmin, models.RoleGatekeeper)).
					Post("/", rt.handler.CreateCluster)
				r.With(middleware.RequireRole(models.RoleAdmin, models.RoleGatekeeper)).
					Put("/{id}", rt.handler.UpdateCluster)
				r.With(middleware.RequireRole(models.RoleAdmin, models.RoleGatekeeper)).
					Delete("/{id}", rt.handler.DeleteCluster)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", rt.handler.ListBudgets)
				r.Get("/{id}", rt.handler.GetBudget)
				budgetEditors := middleware.RequireRole(
					models.RoleAdmin, models.RoleProjectLead, models.RoleGatekeeper)
				r.With(budgetEditors).Post("/", rt.handler.CreateBudget)
				r.With(budgetEditors).Put("/{id}", rt.handler.UpdateBudget)
				r.With(budgetEditors).Delete("/{id}", rt.handler.DeleteBudget)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", rt.handler.ListDocuments)
				r.Get("/{id}", rt.handler.GetDocument)
				r.Post("/", rt.handler.CreateDocument)
				r.Delete("/{id}", rt.handler.DeleteDocument)
			})

			r.Route("/redflags", func(r chi.Router) {
				r.Get("/", rt.handler.ListRedFlags)
				r.Get("/{id}", rt.handler.GetRedFlag)
				r.Post("/", rt.handler.CreateRedFlag)
				r.Post("/{id}/resolve", rt.handler.ResolveRedFlag)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/portfolio", rt.handler.PortfolioReport)
				r.Get("/budgets", rt.handler.BudgetReport)
				r.Get("/redflags", rt.handler.RedFlagReport)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", rt.handler.ListUsers)
				r.Put("/users/{id}/role", rt.handler.UpdateUserRole)
			})
		})
	})

	return r
}
