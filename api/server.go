/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/athletes/*   Athlete management, payer links, memberships, fees
  /api/payers/*     Payer management
  /api/periods/*    Fee schedule and bulk period operators
  /api/seed/*       Composite seeding
  /api/bank/*       Statement import and audit trail

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Athlete routes
		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", h.ListAthletes)
			r.Post("/", h.CreateAthlete)
			r.Get("/{id}", h.GetAthlete)
			r.Put("/{id}", h.RenameAthlete)
			r.Delete("/{id}", h.DeleteAthlete)
			r.Post("/{id}/payers", h.LinkPayer)
			r.Delete("/{id}/payers/{payerID}/{role}", h.UnlinkPayer)
			r.Put("/{id}/memberships", h.SetMembership)
			r.Delete("/{id}/memberships/{year}/{month}", h.RemoveMembership)
			r.Get("/{id}/fee/{year}/{month}", h.GetFee)
		})

		// Payer routes
		r.Route("/payers", func(r chi.Router) {
			r.Get("/", h.ListPayers)
			r.Post("/", h.CreatePayer)
			r.Get("/{id}", h.GetPayer)
			r.Put("/{id}", h.RenamePayer)
			r.Delete("/{id}", h.DeletePayer)
		})

		// Fee schedule routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/missing", h.CreateMissingPeriods)
			r.Post("/existing", h.UpdateExistingPeriods)
			r.Get("/{year}/{month}/fees", h.GetFeeStatement)
		})

		// Seeding routes
		r.Route("/seed", func(r chi.Router) {
			r.Post("/athletes", h.SeedAthlete)
		})

		// Bank statement routes
		r.Route("/bank", func(r chi.Router) {
			r.Post("/imports", h.UploadStatement)
			r.Get("/imports", h.ListImports)
			r.Get("/imports/{id}/details", h.GetImportDetails)
			r.Get("/transactions", h.ListBankTransactions)
		})
	})

	return r
}
