package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints. Login needs no session; logout and refresh
		// take the token from the Authorization header and are
		// forgiving about its state, so they skip the middleware too.
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/auth/refresh", s.handleRefresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/session", s.handleCurrentSession)

			r.Route("/counties", func(r chi.Router) {
				r.Get("/", s.handleListCounties)
				r.Get("/{id}", s.handleGetCounty)
				r.Get("/{id}/municipalities", s.handleListMunicipalities)
			})
		})
	})

	return r
}
