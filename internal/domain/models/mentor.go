// internal/domain/models/mentor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mentor roles. A mentor document carries a role set; admins and
// superadmins are mentors with additional privileges.
const (
	RoleMentor     = "mentor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
	RoleMentee     = "mentee"
)

// Mentor represents a faculty mentor.
//
// NOTE:
//   - MUJid is the human-facing identifier (unique, uppercase).
//   - AcademicYear/AcademicSession tag the mentor to the current
//     period and are rewritten on session rollover; mentors are never
//     hard-deleted by the rollover, only re-tagged.
type Mentor struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MUJid   string             `bson:"mujid" json:"MUJid"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email   string             `bson:"email" json:"email"`
	Phone   string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Roles   []string           `bson:"roles" json:"roles"` // mentor | admin | superadmin
	Active  bool               `bson:"active" json:"active"`

	AcademicYear    string `bson:"academic_year" json:"academicYear"`       // e.g. "2024-2025"
	AcademicSession string `bson:"academic_session" json:"academicSession"` // e.g. "JULY-DECEMBER 2024"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasRole reports whether the mentor's role set contains role.
func (m *Mentor) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SessionRole returns the strongest role for session purposes:
// superadmin > admin > mentor.
func (m *Mentor) SessionRole() string {
	switch {
	case m.HasRole(RoleSuperAdmin):
		return RoleSuperAdmin
	case m.HasRole(RoleAdmin):
		return RoleAdmin
	default:
		return RoleMentor
	}
}
