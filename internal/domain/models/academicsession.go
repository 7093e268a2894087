// internal/domain/models/academicsession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingsPerPage is the fixed page size used when meetings are
// archived into a session snapshot.
const MeetingsPerPage = 25

// ArchivedMeeting is a meeting entry denormalized for archival: mentor
// display details are attached and attendance is precomputed so the
// archive is readable without the live collections.
type ArchivedMeeting struct {
	MeetingID   string       `bson:"meeting_id" json:"meetingId"`
	Date        time.Time    `bson:"date" json:"date"`
	Semester    int          `bson:"semester" json:"semester"`
	MentorMujid string       `bson:"mentor_mujid" json:"mentorMujid"`
	MentorName  string       `bson:"mentor_name,omitempty" json:"mentorName,omitempty"`
	MentorEmail string       `bson:"mentor_email,omitempty" json:"mentorEmail,omitempty"`
	Notes       MeetingNotes `bson:"notes,omitempty" json:"notes,omitempty"`

	MenteesInvited []string   `bson:"mentees_invited" json:"menteesInvited"`
	MenteesPresent []string   `bson:"mentees_present" json:"menteesPresent"`
	Attendance     Attendance `bson:"attendance" json:"attendance"`
}

// MeetingPage is one fixed-size page of archived meetings.
type MeetingPage struct {
	Page     int               `bson:"page" json:"page"` // 1-based
	Meetings []ArchivedMeeting `bson:"meetings" json:"meetings"`
}

// ArchivedMentee is a mentee snapshot embedded under its mentor in the
// archived session tree.
type ArchivedMentee struct {
	MUJid            string `bson:"mujid" json:"MUJid"`
	Name             string `bson:"name" json:"name"`
	Email            string `bson:"email" json:"email"`
	Semester         int    `bson:"semester" json:"semester"`
	MeetingsAttended int    `bson:"meetings_attended" json:"meetingsAttended"`
	MeetingsInvited  int    `bson:"meetings_invited" json:"meetingsInvited"`
}

// ArchivedMentor is a mentor node in the denormalized snapshot tree.
type ArchivedMentor struct {
	MUJid   string           `bson:"mujid" json:"MUJid"`
	Name    string           `bson:"name" json:"name"`
	Email   string           `bson:"email" json:"email"`
	Phone   string           `bson:"phone,omitempty" json:"phone,omitempty"`
	Mentees []ArchivedMentee `bson:"mentees" json:"mentees"`
}

// AttendedMeeting records one meeting a graduated mentee attended.
type AttendedMeeting struct {
	MeetingID string    `bson:"meeting_id" json:"meetingId"`
	Date      time.Time `bson:"date" json:"date"`
	Semester  int       `bson:"semester" json:"semester"`
}

// GraduatedMentee is captured into the archive before the live mentee
// record is deleted at rollover.
type GraduatedMentee struct {
	MUJid       string            `bson:"mujid" json:"MUJid"`
	Name        string            `bson:"name" json:"name"`
	Email       string            `bson:"email" json:"email"`
	MentorMujid string            `bson:"mentor_mujid" json:"mentorMujid"`
	Attended    []AttendedMeeting `bson:"attended" json:"attended"`
	GraduatedAt time.Time         `bson:"graduated_at" json:"graduatedAt"`
}

// SemesterArchive groups the archived data for one semester within a
// session period.
type SemesterArchive struct {
	Semester     int           `bson:"semester" json:"semester"`
	MeetingPages []MeetingPage `bson:"meeting_pages" json:"meetingPages"`
}

// SessionPeriod is one named sub-session (e.g. "JULY-DECEMBER 2024")
// inside an academic year.
//
// Invariant: at most one period across all AcademicSession documents is
// flagged IsCurrent. The sessions store checks this transactionally
// before any flag flip.
type SessionPeriod struct {
	Name       string     `bson:"name" json:"name"`
	IsCurrent  bool       `bson:"is_current" json:"isCurrent"`
	IsArchived bool       `bson:"is_archived" json:"isArchived"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archivedAt,omitempty"`

	Semesters        []SemesterArchive `bson:"semesters,omitempty" json:"semesters,omitempty"`
	Mentors          []ArchivedMentor  `bson:"mentors,omitempty" json:"mentors,omitempty"`
	GraduatedMentees []GraduatedMentee `bson:"graduated_mentees,omitempty" json:"graduatedMentees,omitempty"`
}

// AcademicSession is keyed by (start_year, end_year) and holds the
// year's named sub-sessions.
type AcademicSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StartYear int                `bson:"start_year" json:"start_year"`
	EndYear   int                `bson:"end_year" json:"end_year"`
	Sessions  []SessionPeriod    `bson:"sessions" json:"sessions"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Period returns the named sub-session, or nil if absent.
func (a *AcademicSession) Period(name string) *SessionPeriod {
	for i := range a.Sessions {
		if a.Sessions[i].Name == name {
			return &a.Sessions[i]
		}
	}
	return nil
}
