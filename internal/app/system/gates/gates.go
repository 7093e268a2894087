// Package gates provides authorization checks for handlers that need
// finer-grained role logic than route-level middleware gives them.
//
// Route groups use auth.RequireSignedIn / auth.RequireRole for
// coarse-grained control; a handler inside a mixed-access group calls a
// gate, which writes the 401/403 JSON response itself and returns the
// caller's identity. Handlers behind role-specific middleware should
// use authz.UserCtx directly instead of re-checking.
package gates

import (
	"net/http"

	"github.com/mentorlink/mentorlink/internal/app/system/authz"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
)

// Result contains the outcome of a gate check.
type Result struct {
	Role  string
	Name  string
	MUJid string
	OK    bool
}

// RequireAuth ensures a user is authenticated, writing a 401 otherwise.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, mujid, ok := authz.UserCtx(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "unauthorized"})
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, MUJid: mujid, OK: true}
}

// RequireAdmin ensures the user is an admin or superadmin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	if res.Role != "admin" && res.Role != "superadmin" {
		respond.JSON(w, http.StatusForbidden, respond.ErrorBody{Error: "forbidden"})
		return Result{OK: false}
	}
	return res
}

// RequireMentor ensures the user is a mentor (admins qualify: every
// admin is also a mentor).
func RequireMentor(w http.ResponseWriter, r *http.Request) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	switch res.Role {
	case "mentor", "admin", "superadmin":
		return res
	}
	respond.JSON(w, http.StatusForbidden, respond.ErrorBody{Error: "forbidden"})
	return Result{OK: false}
}
