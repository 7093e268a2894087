// internal/app/store/academicsessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound         = errors.New("academic session not found")
	ErrPeriodNotFound   = errors.New("session period not found")
	ErrDuplicateSession = errors.New("an academic session for these years already exists")
	// ErrCurrentExists is returned when a flag flip would leave more
	// than one period marked current.
	ErrCurrentExists = errors.New("another session period is already current")
	// ErrAlreadyArchived guards rollover idempotence: an archived
	// period cannot be archived again.
	ErrAlreadyArchived = errors.New("session period is already archived")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("academic_sessions")}
}

// Create inserts a new academic year with its named periods. Periods
// start neither current nor archived.
func (s *Store) Create(ctx context.Context, startYear, endYear int, periodNames []string) (models.AcademicSession, error) {
	now := time.Now().UTC()
	doc := models.AcademicSession{
		ID:        primitive.NewObjectID(),
		StartYear: startYear,
		EndYear:   endYear,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, name := range periodNames {
		doc.Sessions = append(doc.Sessions, models.SessionPeriod{Name: name})
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AcademicSession{}, ErrDuplicateSession
		}
		return models.AcademicSession{}, err
	}
	return doc, nil
}

// GetByYears loads the academic session for a year pair.
func (s *Store) GetByYears(ctx context.Context, startYear, endYear int) (models.AcademicSession, error) {
	var doc models.AcademicSession
	err := s.c.FindOne(ctx, bson.M{"start_year": startYear, "end_year": endYear}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.AcademicSession{}, ErrNotFound
	}
	if err != nil {
		return models.AcademicSession{}, err
	}
	return doc, nil
}

// GetCurrent returns the academic session containing the period flagged
// current, plus that period's name.
func (s *Store) GetCurrent(ctx context.Context) (models.AcademicSession, string, error) {
	var doc models.AcademicSession
	err := s.c.FindOne(ctx, bson.M{"sessions.is_current": true}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.AcademicSession{}, "", ErrNotFound
	}
	if err != nil {
		return models.AcademicSession{}, "", err
	}
	for _, p := range doc.Sessions {
		if p.IsCurrent {
			return doc, p.Name, nil
		}
	}
	return models.AcademicSession{}, "", ErrPeriodNotFound
}

// List returns every academic session, newest years first.
func (s *Store) List(ctx context.Context) ([]models.AcademicSession, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.AcademicSession
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SetCurrent flags the named period current after verifying no other
// period anywhere holds the flag. Run inside a transaction so the check
// and the flip are atomic.
func (s *Store) SetCurrent(ctx context.Context, startYear, endYear int, periodName string) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"sessions.is_current": true})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCurrentExists
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"start_year": startYear, "end_year": endYear, "sessions.name": periodName},
		bson.M{"$set": bson.M{
			"sessions.$.is_current": true,
			"updated_at":            time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// ClearCurrent drops the current flag from the named period.
func (s *Store) ClearCurrent(ctx context.Context, startYear, endYear int, periodName string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"start_year": startYear, "end_year": endYear, "sessions.name": periodName},
		bson.M{"$set": bson.M{
			"sessions.$.is_current": false,
			"updated_at":            time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// SaveArchive writes the denormalized snapshot into the named period
// and marks it archived. Refuses to overwrite an already-archived
// period (rollover idempotence guard).
func (s *Store) SaveArchive(ctx context.Context, startYear, endYear int, periodName string,
	semesters []models.SemesterArchive, mentors []models.ArchivedMentor, graduated []models.GraduatedMentee) error {

	doc, err := s.GetByYears(ctx, startYear, endYear)
	if err != nil {
		return err
	}
	p := doc.Period(periodName)
	if p == nil {
		return ErrPeriodNotFound
	}
	if p.IsArchived {
		return ErrAlreadyArchived
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"start_year": startYear,
			"end_year":   endYear,
			"sessions": bson.M{"$elemMatch": bson.M{
				"name":        periodName,
				"is_archived": false,
			}},
		},
		bson.M{"$set": bson.M{
			"sessions.$.is_archived":       true,
			"sessions.$.is_current":        false,
			"sessions.$.archived_at":       now,
			"sessions.$.semesters":         semesters,
			"sessions.$.mentors":           mentors,
			"sessions.$.graduated_mentees": graduated,
			"updated_at":                   now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Lost a race with another archival of the same period.
		return ErrAlreadyArchived
	}
	return nil
}

// GetArchivedPeriod loads one archived period's snapshot.
func (s *Store) GetArchivedPeriod(ctx context.Context, startYear, endYear int, periodName string) (models.SessionPeriod, error) {
	doc, err := s.GetByYears(ctx, startYear, endYear)
	if err != nil {
		return models.SessionPeriod{}, err
	}
	p := doc.Period(periodName)
	if p == nil {
		return models.SessionPeriod{}, ErrPeriodNotFound
	}
	if !p.IsArchived {
		return models.SessionPeriod{}, fmt.Errorf("%w: period %q is not archived", ErrPeriodNotFound, periodName)
	}
	return *p, nil
}
