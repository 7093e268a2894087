// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingNotes is the free-text report a mentor files after a meeting.
// All fields are sanitized before storage.
type MeetingNotes struct {
	TopicOfDiscussion string `bson:"topic_of_discussion,omitempty" json:"topicOfDiscussion,omitempty"`
	TypeOfInformation string `bson:"type_of_information,omitempty" json:"typeOfInformation,omitempty"`
	NotesToStudent    string `bson:"notes_to_student,omitempty" json:"notesToStudent,omitempty"`
	Outcome           string `bson:"outcome,omitempty" json:"outcome,omitempty"`
	ClosureRemarks    string `bson:"closure_remarks,omitempty" json:"closureRemarks,omitempty"`
}

// MeetingEntry is one scheduled meeting embedded in a mentor's meeting
// document. MeetingID is a UUID string so entries stay addressable
// after archival, independent of their containing document.
type MeetingEntry struct {
	MeetingID      string       `bson:"meeting_id" json:"meetingId"`
	Date           time.Time    `bson:"date" json:"date"`
	Semester       int          `bson:"semester" json:"semester"`
	Notes          MeetingNotes `bson:"notes,omitempty" json:"notes,omitempty"`
	MenteesInvited []string     `bson:"mentees_invited" json:"menteesInvited"` // mentee MUJids
	MenteesPresent []string     `bson:"mentees_present" json:"menteesPresent"`
	ReportFilled   bool         `bson:"report_filled" json:"reportFilled"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MeetingDoc is the per-mentor meeting document: one document per
// mentor per academic period, holding an embedded list of meetings.
// The whole document is deleted from the live collection once its
// entries are archived into a session snapshot.
type MeetingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MentorMujid string             `bson:"mentor_mujid" json:"mentorMujid"`

	AcademicYear    string `bson:"academic_year" json:"academicYear"`
	AcademicSession string `bson:"academic_session" json:"academicSession"`

	Meetings []MeetingEntry `bson:"meetings" json:"meetings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Attendance summarizes turnout for one meeting. Percentage is 0 when
// no mentees were invited.
type Attendance struct {
	Total      int `bson:"total" json:"total"`
	Present    int `bson:"present" json:"present"`
	Percentage int `bson:"percentage" json:"percentage"`
}

// ComputeAttendance builds an Attendance from invited/present counts,
// rounding the percentage to the nearest integer.
func ComputeAttendance(invited, present int) Attendance {
	a := Attendance{Total: invited, Present: present}
	if invited > 0 {
		a.Percentage = (present*100 + invited/2) / invited
	}
	return a
}
