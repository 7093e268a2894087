// internal/app/features/academicsession/routes.go
package academicsession

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the session lifecycle endpoints,
// mounted under /api/admin/academicSession.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/current", h.GetCurrent)
	r.Put("/archive", h.Archive)
	r.Put("/changeToUpcoming", h.ChangeToUpcoming)
	return r
}
