// internal/app/features/mentees/routes.go
package mentees

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the mentee admin endpoints, mounted
// under /api/admin/mentee. Role gating happens on the parent group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/upload_csv", h.Upload)
	r.Get("/{mujid}", h.Get)
	r.Put("/{mujid}", h.Update)
	r.Delete("/{mujid}", h.Delete)
	return r
}
