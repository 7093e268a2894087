// internal/app/store/mentors/mentorstore.go
package mentorstore

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
	ErrDuplicateMentor = errors.New("a mentor with this MUJid or email already exists")
	ErrNotFound        = errors.New("mentor not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mentors")}
}

func (s *Store) Create(ctx context.Context, m models.Mentor) (models.Mentor, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.NameCI = text.Fold(m.Name)
	if len(m.Roles) == 0 {
		m.Roles = []string{models.RoleMentor}
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Mentor{}, ErrDuplicateMentor
		}
		return models.Mentor{}, err
	}
	return m, nil
}

func (s *Store) GetByMujid(ctx context.Context, mujid string) (models.Mentor, error) {
	var m models.Mentor
	err := s.c.FindOne(ctx, bson.M{"mujid": mujid}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Mentor{}, ErrNotFound
	}
	if err != nil {
		return models.Mentor{}, err
	}
	return m, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Mentor, error) {
	var m models.Mentor
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Mentor{}, ErrNotFound
	}
	if err != nil {
		return models.Mentor{}, err
	}
	return m, nil
}

// Update modifies a mentor's mutable fields and refreshes UpdatedAt.
// The MUJid itself is immutable.
func (s *Store) Update(ctx context.Context, mujid string, m models.Mentor) error {
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
	if len(m.Roles) > 0 {
		set["roles"] = m.Roles
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"mujid": mujid}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMentor
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, mujid string, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"mujid": mujid}, bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a mentor by MUJid. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, mujid string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"mujid": mujid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns mentors matching the filter, sorted by folded name.
func (s *Store) List(ctx context.Context, filter bson.M) ([]models.Mentor, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var mentors []models.Mentor
	if err := cur.All(ctx, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// ListActive returns every active mentor.
func (s *Store) ListActive(ctx context.Context) ([]models.Mentor, error) {
	return s.List(ctx, bson.M{"active": true})
}

// RetagSession rewrites the academic year/session tag on every active
// mentor. Called by the session rollover; mentors are never deleted by
// it. Returns the number of mentors re-tagged.
func (s *Store) RetagSession(ctx context.Context, academicYear, academicSession string) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"active": true}, bson.M{"$set": bson.M{
		"academic_year":    academicYear,
		"academic_session": academicSession,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Count returns the number of mentors matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
