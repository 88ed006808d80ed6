/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for local tooling

ROUTE GROUPS:
  /api/v1/payrates/*     Pay rate timeline
  /api/v1/timeentries/*  Time entries, plus CSV export/import
  /api/v1/projects/*     Projects
  /api/v1/payments/*     Payments received
  /api/v1/incidentals/*  One-off charges and credits
  /api/v1/dashboard/*    Balance and hours summaries

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/timepe/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payrates", func(r chi.Router) {
			r.Get("/", h.ListPayRates)
			r.Post("/", h.CreatePayRate)
			r.Get("/current", h.GetCurrentPayRate)
			r.Get("/{id}", h.GetPayRate)
			r.Put("/{id}", h.UpdatePayRate)
			r.Delete("/{id}", h.DeletePayRate)
		})

		r.Route("/timeentries", func(r chi.Router) {
			r.Get("/", h.ListTimeEntries)
			r.Post("/", h.CreateTimeEntry)
			r.Get("/export", h.ExportTimeEntriesCSV)
			r.Post("/import", h.ImportTimeEntriesCSV)
			r.Get("/{id}", h.GetTimeEntry)
			r.Put("/{id}", h.UpdateTimeEntry)
			r.Delete("/{id}", h.DeleteTimeEntry)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/export", h.ExportProjectsCSV)
			r.Post("/import", h.ImportProjectsCSV)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Route("/incidentals", func(r chi.Router) {
			r.Get("/", h.ListIncidentals)
			r.Post("/", h.CreateIncidental)
			r.Put("/{id}", h.UpdateIncidental)
			r.Delete("/{id}", h.DeleteIncidental)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", h.GetBalanceSummary)
			r.Get("/recent", h.GetRecentEntries)
			r.Get("/project-hours", h.GetProjectHours)
			r.Get("/weekly-hours", h.GetWeeklyHours)
		})
	})

	return r
}
