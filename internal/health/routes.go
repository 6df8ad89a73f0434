package health

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes mounts the status page and the JSON health check.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	r.Get("/health", h.ServeJSON)

	return r
}
