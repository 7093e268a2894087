// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the login endpoints, mounted under
// /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/otp", h.RequestOTP)
	r.Post("/verify", h.VerifyOTP)
	r.Post("/logout", h.Logout)
	return r
}
