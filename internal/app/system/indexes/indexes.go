// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureMentors(ctx, db); err != nil {
		problems = append(problems, "mentors: "+err.Error())
	}
	if err := ensureMentees(ctx, db); err != nil {
		problems = append(problems, "mentees: "+err.Error())
	}
	if err := ensureMeetings(ctx, db); err != nil {
		problems = append(problems, "meetings: "+err.Error())
	}
	if err := ensureAcademicSessions(ctx, db); err != nil {
		problems = append(problems, "academic_sessions: "+err.Error())
	}
	if err := ensureEmailVerifications(ctx, db); err != nil {
		problems = append(problems, "email_verifications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()

		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			// Name or options mismatch (e.g. upgrading to unique): drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureMentors(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("mentors")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One account per registration number.
		{
			Keys:    bson.D{{Key: "mujid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_mentors_mujid"),
		},
		// OTP login looks mentors up by email.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_mentors_email"),
		},
		// Admin lists: filter by active, sort by folded name with a stable tiebreak.
		{
			Keys: bson.D{
				{Key: "active", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_mentors_active_nameci__id"),
		},
	})
}

func ensureMentees(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("mentees")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mujid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_mentees_mujid"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_mentees_email"),
		},
		// Mentor dashboards: a mentor's mentees grouped by semester.
		{
			Keys: bson.D{
				{Key: "mentor_mujid", Value: 1},
				{Key: "semester", Value: 1},
				{Key: "name_ci", Value: 1},
			},
			Options: options.Index().SetName("idx_mentees_mentor_semester_nameci"),
		},
		// Rollover partitions mentees by semester across the whole collection.
		{
			Keys:    bson.D{{Key: "semester", Value: 1}},
			Options: options.Index().SetName("idx_mentees_semester"),
		},
	})
}

func ensureMeetings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("meetings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One meeting document per mentor per session period.
		{
			Keys: bson.D{
				{Key: "mentor_mujid", Value: 1},
				{Key: "academic_year", Value: 1},
				{Key: "academic_session", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_meetings_mentor_session"),
		},
		// Rollover collects every meeting document for the closing period.
		{
			Keys: bson.D{
				{Key: "academic_year", Value: 1},
				{Key: "academic_session", Value: 1},
			},
			Options: options.Index().SetName("idx_meetings_session"),
		},
	})
}

func ensureAcademicSessions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("academic_sessions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One document per academic year pair.
		{
			Keys: bson.D{
				{Key: "start_year", Value: 1},
				{Key: "end_year", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_sessions_years"),
		},
		// Finding the current period scans sessions.is_current.
		{
			Keys:    bson.D{{Key: "sessions.is_current", Value: 1}},
			Options: options.Index().SetName("idx_sessions_current"),
		},
	})
}

func ensureEmailVerifications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("email_verifications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One outstanding code per email; a new request replaces the old one.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_verifications_email"),
		},
		// Expired codes are pruned by the background cleaner; TTL is the backstop.
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("ttl_verifications_expires"),
		},
	})
}
