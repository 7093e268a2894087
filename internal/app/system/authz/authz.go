// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/mentorlink/mentorlink/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), name, MUJid, and a
// found flag. If no user is present in context it returns
// "visitor", "", "", false, so ok=true always means an authenticated
// user with a usable MUJid.
func UserCtx(r *http.Request) (role string, name string, mujid string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.MUJid == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.MUJid, true
}

// IsSuperAdmin reports whether the current request's user is a superadmin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "superadmin"
}

// IsAdmin reports whether the current request's user is an admin.
// Superadmins are also considered admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "superadmin")
}

// IsMentor reports whether the current request's user is a mentor.
func IsMentor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "mentor"
}

// IsMentee reports whether the current request's user is a mentee.
func IsMentee(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "mentee"
}
