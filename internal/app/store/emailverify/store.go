// internal/app/store/emailverify/store.go
package emailverify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the length of the login code (6 digits).
	CodeLength = 6
	// DefaultExpiry is how long a login code is valid.
	DefaultExpiry = 10 * time.Minute
	// BcryptCost for hashing codes.
	BcryptCost = 10
	// MaxVerifyAttempts is the maximum number of code verification attempts per code.
	MaxVerifyAttempts = 5
	// MaxResends is the maximum number of code resends within the rate limit window.
	MaxResends = 3
	// ResendWindow is the time window for tracking resend rate limiting.
	ResendWindow = 10 * time.Minute
)

var (
	// ErrNotFound is returned when a login code is not found or expired.
	ErrNotFound = errors.New("login code not found or expired")
	// ErrInvalidCode is returned when the code doesn't match.
	ErrInvalidCode = errors.New("invalid login code")
	// ErrTooManyAttempts is returned when too many verification attempts have been made.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrTooManyResends is returned when too many resend requests have been made.
	ErrTooManyResends = errors.New("too many resend requests")
)

// Verification is a pending one-time login code, keyed by email.
type Verification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	CodeHash    string             `bson:"code_hash"` // bcrypt hash of the 6-digit code
	ExpiresAt   time.Time          `bson:"expires_at"`
	CreatedAt   time.Time          `bson:"created_at"`
	Attempts    int                `bson:"attempts"`
	ResendCount int                `bson:"resend_count"`
	WindowStart time.Time          `bson:"window_start"`
}

// Store manages one-time login codes.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a new Store with the specified expiry duration.
// If expiry is 0 or negative, DefaultExpiry (10 minutes) is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("email_verifications"),
		expiry: expiry,
	}
}

// Expiry returns the expiry duration for login codes.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Create issues a new login code for the email, replacing any previous
// one. Returns the plain text code to send via email. If isResend is
// true, this counts against the resend rate limit.
func (s *Store) Create(ctx context.Context, email string, isResend bool) (string, error) {
	now := time.Now()

	var existing Verification
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	existingFound := err == nil

	if isResend && existingFound {
		if now.Before(existing.WindowStart.Add(ResendWindow)) && existing.ResendCount >= MaxResends {
			return "", ErrTooManyResends
		}
	}

	code := generateCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	// Carry the resend window over if the old one is still running.
	resendCount := 0
	windowStart := now
	if existingFound && now.Before(existing.WindowStart.Add(ResendWindow)) {
		windowStart = existing.WindowStart
		resendCount = existing.ResendCount
		if isResend {
			resendCount++
		}
	}

	v := Verification{
		ID:          primitive.NewObjectID(),
		Email:       email,
		CodeHash:    string(hash),
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
		Attempts:    0,
		ResendCount: resendCount,
		WindowStart: windowStart,
	}

	// One outstanding code per email.
	_, _ = s.c.DeleteMany(ctx, bson.M{"email": email})
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return "", fmt.Errorf("insert verification: %w", err)
	}

	return code, nil
}

// VerifyCode checks a code against the pending verification for the
// email. The record is deleted after a successful match (single use).
// Returns ErrTooManyAttempts once the attempt budget is spent.
func (s *Store) VerifyCode(ctx context.Context, email, code string) error {
	var v Verification
	err := s.c.FindOne(ctx, bson.M{
		"email":      email,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}

	if v.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}

	// Count the attempt before comparing, valid or not.
	_, _ = s.c.UpdateOne(ctx, bson.M{"_id": v.ID}, bson.M{"$inc": bson.M{"attempts": 1}})

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return ErrInvalidCode
	}

	_, _ = s.c.DeleteOne(ctx, bson.M{"_id": v.ID})
	return nil
}

// DeleteByEmail deletes any pending code for the email.
func (s *Store) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"email": email})
	return err
}

// CleanupExpired removes expired codes that the TTL monitor has not
// collected yet. Returns the number of records removed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// generateCode generates a random 6-digit numeric code.
// Panics if the system's cryptographic random number generator fails.
func generateCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	// Always 6 digits (100000 to 999999)
	code := (n % 900000) + 100000
	return fmt.Sprintf("%06d", code)
}
