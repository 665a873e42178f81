/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

PUBLIC vs ADMIN:
  The cost calculator, current rate, health check, and read-only
  worker/project/gallery data are public. Every mutating route and the
  payroll export sit behind bearer-token auth with the admin allow-list.

SEE ALSO:
  - handlers.go: handler implementations
  - auth.go: bearer middleware
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public surface
		r.Get("/health", h.Health)
		r.Get("/calculator", h.Calculate)
		r.Get("/rate", h.GetRate)
		r.Post("/auth/login", h.Login)

		r.Get("/workers", h.ListWorkers)
		r.Get("/workers/{id}", h.GetWorker)
		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{id}", h.GetProject)
		r.Get("/attendance", h.ListAttendance)

		// Admin surface. Registered per-method so the public GETs above
		// keep their routes.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)

			r.Post("/workers", h.SaveWorker)
			r.Put("/workers/{id}", h.SaveWorker)
			r.Delete("/workers/{id}", h.DeleteWorker)
			r.Get("/workers/{id}/summary", h.GetWorkerSummary)
			r.Get("/workers/{id}/payments", h.ListWorkerPayments)

			r.Post("/projects", h.CreateProject)
			r.Delete("/projects/{id}", h.DeleteProject)
			r.Post("/projects/{id}/complete", h.CompleteProject)
			r.Post("/projects/{id}/photos", h.AddProjectPhoto)
			r.Get("/projects/{id}/summary", h.GetProjectSummary)

			r.Post("/attendance", h.MarkAttendance)
			r.Delete("/attendance", h.UnmarkAttendance)

			r.Post("/payments", h.RecordPayment)

			r.Put("/rate", h.SetRate)
			r.Get("/rate/history", h.GetRateHistory)

			r.Get("/dashboard", h.GetDashboard)
			r.Get("/reports/payroll.xlsx", h.ExportPayroll)

			r.Post("/upload", h.Upload)
			r.Post("/admin/seed", h.SeedDemo)
		})
	})

	// Locally stored photos (CDN fallback tier).
	if h.Uploader != nil && h.Uploader.Dir != "" {
		fileServer := http.FileServer(http.Dir(h.Uploader.Dir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	return r
}
