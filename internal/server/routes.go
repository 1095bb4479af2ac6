package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Route("/command", func(r chi.Router) {
		r.Get("/", s.listCommands)
		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", s.getCommand)
			r.Post("/enable", s.enableCommand)
			r.Post("/disable", s.disableCommand)
		})
	})

	r.Get("/namespace", s.listNamespaces)

	// Dispatch
	r.Post("/preview", s.preview)
	r.Post("/execute", s.execute)
	r.Get("/history", s.history)

	// Loading
	r.Post("/reload", s.reload)
	r.Post("/reload/{namespace}", s.reloadNamespace)
	r.Post("/script/check", s.checkScript)

	// Event streaming (SSE)
	r.Get("/event", s.events)
}
