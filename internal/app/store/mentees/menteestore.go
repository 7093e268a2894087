// internal/app/store/mentees/menteestore.go
package menteestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
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
	ErrDuplicateMentee = errors.New("a mentee with this MUJid or email already exists")
	ErrNotFound        = errors.New("mentee not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mentees")}
}

func (s *Store) Create(ctx context.Context, m models.Mentee) (models.Mentee, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.NameCI = text.Fold(m.Name)
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Mentee{}, ErrDuplicateMentee
		}
		return models.Mentee{}, err
	}
	return m, nil
}

// CreateMany inserts a batch of mentees, typically from a CSV upload.
// Inserts are unordered so one duplicate does not abort the rest;
// returns the number inserted and ErrDuplicateMentee if any were
// skipped.
func (s *Store) CreateMany(ctx context.Context, mentees []models.Mentee) (int, error) {
	if len(mentees) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(mentees))
	for _, m := range mentees {
		m.ID = primitive.NewObjectID()
		m.NameCI = text.Fold(m.Name)
		m.CreatedAt = now
		m.UpdatedAt = now
		docs = append(docs, m)
	}

	res, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return inserted, ErrDuplicateMentee
		}
		return inserted, err
	}
	return inserted, nil
}

func (s *Store) GetByMujid(ctx context.Context, mujid string) (models.Mentee, error) {
	var m models.Mentee
	err := s.c.FindOne(ctx, bson.M{"mujid": mujid}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Mentee{}, ErrNotFound
	}
	if err != nil {
		return models.Mentee{}, err
	}
	return m, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Mentee, error) {
	var m models.Mentee
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Mentee{}, ErrNotFound
	}
	if err != nil {
		return models.Mentee{}, err
	}
	return m, nil
}

// Update modifies a mentee's mutable fields and refreshes UpdatedAt.
// The MUJid itself is immutable; semester moves only through the
// session rollover or an explicit admin correction.
func (s *Store) Update(ctx context.Context, mujid string, m models.Mentee) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if m.Name != "" {
		set["name"] = m.Name
		set["name_ci"] = text.Fold(m.Name)
	}
	if m.Email != "" {
		set["email"] = m.Email
	}
	if m.Phone != "" {
		set["phone"] = m.Phone
	}
	if m.Semester >= models.MinSemester && m.Semester <= models.MaxSemester {
		set["semester"] = m.Semester
	}
	if m.MentorMujid != "" {
		set["mentor_mujid"] = m.MentorMujid
	}
	if m.MentorRemarks != "" {
		set["mentor_remarks"] = m.MentorRemarks
	}
	if m.Guardian != (models.Guardian{}) {
		set["guardian"] = m.Guardian
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"mujid": mujid}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMentee
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a mentee by MUJid. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, mujid string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"mujid": mujid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns mentees matching the filter, sorted by folded name.
func (s *Store) List(ctx context.Context, filter bson.M) ([]models.Mentee, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var mentees []models.Mentee
	if err := cur.All(ctx, &mentees); err != nil {
		return nil, err
	}
	return mentees, nil
}

// ListByMentor returns a mentor's mentees sorted by semester, then name.
func (s *Store) ListByMentor(ctx context.Context, mentorMujid string) ([]models.Mentee, error) {
	cur, err := s.c.Find(ctx, bson.M{"mentor_mujid": mentorMujid},
		options.Find().SetSort(bson.D{{Key: "semester", Value: 1}, {Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var mentees []models.Mentee
	if err := cur.All(ctx, &mentees); err != nil {
		return nil, err
	}
	return mentees, nil
}

// Partition splits the whole collection into continuing and graduating
// mentees. The rollover snapshots both groups before mutating anything.
func (s *Store) Partition(ctx context.Context) (continuing, graduating []models.Mentee, err error) {
	all, err := s.List(ctx, bson.M{})
	if err != nil {
		return nil, nil, err
	}
	for _, m := range all {
		if m.Graduating() {
			graduating = append(graduating, m)
		} else {
			continuing = append(continuing, m)
		}
	}
	return continuing, graduating, nil
}

// PromoteContinuing advances every mentee below the terminal semester
// by exactly one and rewrites their session tag. Graduating mentees are
// untouched; they are removed separately by DeleteGraduated. Returns
// the number promoted.
func (s *Store) PromoteContinuing(ctx context.Context, academicYear, academicSession string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"semester": bson.M{"$lt": models.MaxSemester}},
		bson.M{
			"$inc": bson.M{"semester": 1},
			"$set": bson.M{
				"academic_year":    academicYear,
				"academic_session": academicSession,
				"updated_at":       time.Now().UTC(),
			},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteGraduated removes every mentee in the terminal semester.
// Returns the number removed.
func (s *Store) DeleteGraduated(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"semester": bson.M{"$gte": models.MaxSemester}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of mentees matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
