// internal/app/features/archive/routes.go
package archive

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the archive views, mounted under
// /api/archive.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/getSessionData", h.GetSessionData)
	r.Get("/downloadReport", h.DownloadReport)
	return r
}
