// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"errors"
	"time"

	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound     = errors.New("meeting not found")
	ErrReportFilled = errors.New("meeting report already filled")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meetings")}
}

// AddEntry appends a meeting to the mentor's document for the period,
// creating the document on first use (upsert).
func (s *Store) AddEntry(ctx context.Context, mentorMujid, academicYear, academicSession string, entry models.MeetingEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.c.UpdateOne(ctx,
		bson.M{
			"mentor_mujid":     mentorMujid,
			"academic_year":    academicYear,
			"academic_session": academicSession,
		},
		bson.M{
			"$push": bson.M{"meetings": entry},
			"$set":  bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true))
	return err
}

// GetByMentor loads a mentor's meeting document for the period.
func (s *Store) GetByMentor(ctx context.Context, mentorMujid, academicYear, academicSession string) (models.MeetingDoc, error) {
	var doc models.MeetingDoc
	err := s.c.FindOne(ctx, bson.M{
		"mentor_mujid":     mentorMujid,
		"academic_year":    academicYear,
		"academic_session": academicSession,
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.MeetingDoc{}, ErrNotFound
	}
	if err != nil {
		return models.MeetingDoc{}, err
	}
	return doc, nil
}

// FindEntry locates a single meeting by its UUID within the mentor's
// document for the period.
func (s *Store) FindEntry(ctx context.Context, mentorMujid, academicYear, academicSession, meetingID string) (models.MeetingEntry, error) {
	doc, err := s.GetByMentor(ctx, mentorMujid, academicYear, academicSession)
	if err != nil {
		return models.MeetingEntry{}, err
	}
	for _, e := range doc.Meetings {
		if e.MeetingID == meetingID {
			return e, nil
		}
	}
	return models.MeetingEntry{}, ErrNotFound
}

// FillReport records the attendance and notes for one meeting. A report
// can be filled once; later edits go through UpdateReport.
func (s *Store) FillReport(ctx context.Context, mentorMujid, academicYear, academicSession, meetingID string, present []string, notes models.MeetingNotes) error {
	entry, err := s.FindEntry(ctx, mentorMujid, academicYear, academicSession, meetingID)
	if err != nil {
		return err
	}
	if entry.ReportFilled {
		return ErrReportFilled
	}
	return s.writeReport(ctx, mentorMujid, academicYear, academicSession, meetingID, present, notes)
}

// UpdateReport overwrites an already-filled report.
func (s *Store) UpdateReport(ctx context.Context, mentorMujid, academicYear, academicSession, meetingID string, present []string, notes models.MeetingNotes) error {
	if _, err := s.FindEntry(ctx, mentorMujid, academicYear, academicSession, meetingID); err != nil {
		return err
	}
	return s.writeReport(ctx, mentorMujid, academicYear, academicSession, meetingID, present, notes)
}

func (s *Store) writeReport(ctx context.Context, mentorMujid, academicYear, academicSession, meetingID string, present []string, notes models.MeetingNotes) error {
	now := time.Now().UTC()
	if present == nil {
		present = []string{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"mentor_mujid":        mentorMujid,
			"academic_year":       academicYear,
			"academic_session":    academicSession,
			"meetings.meeting_id": meetingID,
		},
		bson.M{"$set": bson.M{
			"meetings.$.mentees_present": present,
			"meetings.$.notes":           notes,
			"meetings.$.report_filled":   true,
			"meetings.$.updated_at":      now,
			"updated_at":                 now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBySession returns every mentor's meeting document for the period.
// The rollover uses this to build the archive snapshot.
func (s *Store) ListBySession(ctx context.Context, academicYear, academicSession string) ([]models.MeetingDoc, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"academic_year":    academicYear,
		"academic_session": academicSession,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.MeetingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteBySession removes every meeting document for the period after
// its entries have been archived. Returns the number removed.
func (s *Store) DeleteBySession(ctx context.Context, academicYear, academicSession string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"academic_year":    academicYear,
		"academic_session": academicSession,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of meeting documents matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
