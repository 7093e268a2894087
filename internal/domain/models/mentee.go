// internal/domain/models/mentee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Semester bounds for mentees. A mentee graduates out of the live
// collection once their semester reaches MaxSemester and a session
// rollover runs.
const (
	MinSemester = 1
	MaxSemester = 8
)

// Guardian holds parent/guardian contact details for a mentee.
type Guardian struct {
	FatherName  string `bson:"father_name,omitempty" json:"fatherName,omitempty"`
	MotherName  string `bson:"mother_name,omitempty" json:"motherName,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
}

// Mentee represents a student assigned to a mentor.
//
// Semester is incremented exactly once per rollover for non-graduating
// mentees; AcademicYear/AcademicSession are rewritten at the same time.
type Mentee struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MUJid    string             `bson:"mujid" json:"MUJid"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"name_ci"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Semester int                `bson:"semester" json:"semester"` // 1..8

	MentorMujid string   `bson:"mentor_mujid" json:"mentorMujid"`
	Guardian    Guardian `bson:"guardian,omitempty" json:"guardian,omitempty"`

	// Free-text notes from the mentor; sanitized before storage.
	MentorRemarks string `bson:"mentor_remarks,omitempty" json:"mentorRemarks,omitempty"`

	AcademicYear    string `bson:"academic_year" json:"academicYear"`
	AcademicSession string `bson:"academic_session" json:"academicSession"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Graduating reports whether the mentee is in the terminal semester.
func (m *Mentee) Graduating() bool {
	return m.Semester >= MaxSemester
}
