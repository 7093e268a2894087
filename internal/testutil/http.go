package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/mentorlink/mentorlink/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	MUJid string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		MUJid: "MUJADMIN",
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// SuperAdminUser returns a TestUser with superadmin role.
func SuperAdminUser() TestUser {
	return TestUser{
		MUJid: "MUJSUPER",
		Name:  "Test Super Admin",
		Email: "super@test.com",
		Role:  "superadmin",
	}
}

// MentorUser returns a TestUser with mentor role.
func MentorUser() TestUser {
	return TestUser{
		MUJid: "MUJM01",
		Name:  "Test Mentor",
		Email: "mentor@test.com",
		Role:  "mentor",
	}
}

// MenteeUser returns a TestUser with mentee role.
func MenteeUser() TestUser {
	return TestUser{
		MUJid: "MUJ2024001",
		Name:  "Test Mentee",
		Email: "mentee@test.com",
		Role:  "mentee",
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		MUJid: user.MUJid,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
