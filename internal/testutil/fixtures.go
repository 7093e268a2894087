package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMentor inserts a test mentor tagged to the given period.
func (f *Fixtures) CreateMentor(ctx context.Context, mujid, name, email, year, session string) models.Mentor {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Mentor{
		ID:              primitive.NewObjectID(),
		MUJid:           mujid,
		Name:            name,
		NameCI:          text.Fold(name),
		Email:           email,
		Roles:           []string{models.RoleMentor},
		Active:          true,
		AcademicYear:    year,
		AcademicSession: session,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("mentors").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test mentor: %v", err)
	}
	return m
}

// CreateMentee inserts a test mentee assigned to the given mentor.
func (f *Fixtures) CreateMentee(ctx context.Context, mujid, name, mentorMujid string, semester int, year, session string) models.Mentee {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Mentee{
		ID:              primitive.NewObjectID(),
		MUJid:           mujid,
		Name:            name,
		NameCI:          text.Fold(name),
		Email:           mujid + "@test.com",
		Semester:        semester,
		MentorMujid:     mentorMujid,
		AcademicYear:    year,
		AcademicSession: session,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("mentees").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test mentee: %v", err)
	}
	return m
}

// CreateMeetingDoc inserts a meeting document holding the given entries
// for a mentor in the given period.
func (f *Fixtures) CreateMeetingDoc(ctx context.Context, mentorMujid, year, session string, entries ...models.MeetingEntry) models.MeetingDoc {
	f.t.Helper()

	now := time.Now().UTC()
	doc := models.MeetingDoc{
		ID:              primitive.NewObjectID(),
		MentorMujid:     mentorMujid,
		AcademicYear:    year,
		AcademicSession: session,
		Meetings:        entries,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("meetings").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test meeting doc: %v", err)
	}
	return doc
}

// MeetingEntry builds a meeting entry with a fresh UUID for fixture use.
func (f *Fixtures) MeetingEntry(semester int, invited, present []string, reportFilled bool) models.MeetingEntry {
	f.t.Helper()

	now := time.Now().UTC()
	return models.MeetingEntry{
		MeetingID:      uuid.NewString(),
		Date:           now.Add(-24 * time.Hour),
		Semester:       semester,
		MenteesInvited: invited,
		MenteesPresent: present,
		ReportFilled:   reportFilled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateAcademicSession inserts an academic year with the named periods;
// currentPeriod (if non-empty) is flagged current.
func (f *Fixtures) CreateAcademicSession(ctx context.Context, startYear, endYear int, periodNames []string, currentPeriod string) models.AcademicSession {
	f.t.Helper()

	now := time.Now().UTC()
	doc := models.AcademicSession{
		ID:        primitive.NewObjectID(),
		StartYear: startYear,
		EndYear:   endYear,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, name := range periodNames {
		doc.Sessions = append(doc.Sessions, models.SessionPeriod{
			Name:      name,
			IsCurrent: name == currentPeriod,
		})
	}

	if _, err := f.db.Collection("academic_sessions").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test academic session: %v", err)
	}
	return doc
}
