// internal/app/features/meetings/routes.go
package meetings

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the mentor meeting endpoints, mounted
// under /api/mentor/meetings.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Schedule)
	r.Post("/{meetingID}/report", h.FileReport)
	r.Put("/{meetingID}/report", h.UpdateReport)
	return r
}
