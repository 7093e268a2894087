// internal/app/features/mentors/routes.go
package mentors

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the mentor admin endpoints, mounted
// under /api/admin/mentor. Role gating happens on the parent group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{mujid}", h.Get)
	r.Put("/{mujid}", h.Update)
	r.Delete("/{mujid}", h.Delete)
	return r
}
