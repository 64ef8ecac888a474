package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-auth/internal/web/handlers"
	"github.com/kozaktomas/face-auth/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(s.config, s.users, s.tokens)

	s.router.Get("/health", handlers.HealthCheck)

	// The backend is reachable both at the root and under /auth, so API_URL
	// may point at either.
	mount := func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccessToken(s.tokens))
			r.Get("/me", authHandler.Me)
		})
	}

	s.router.Group(mount)
	s.router.Route("/auth", mount)
}
