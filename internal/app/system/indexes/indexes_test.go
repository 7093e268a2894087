package indexes_test

import (
	"testing"

	"github.com/mentorlink/mentorlink/internal/app/system/indexes"
	"github.com/mentorlink/mentorlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"mentors": {
			"uniq_mentors_mujid",
			"uniq_mentors_email",
			"idx_mentors_active_nameci__id",
		},
		"mentees": {
			"uniq_mentees_mujid",
			"uniq_mentees_email",
			"idx_mentees_mentor_semester_nameci",
			"idx_mentees_semester",
		},
		"meetings": {
			"uniq_meetings_mentor_session",
			"idx_meetings_session",
		},
		"academic_sessions": {
			"uniq_sessions_years",
			"idx_sessions_current",
		},
		"email_verifications": {
			"uniq_verifications_email",
			"ttl_verifications_expires",
		},
	}

	for coll, names := range expected {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("%s: list indexes failed: %v", coll, err)
		}

		have := make(map[string]bool)
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				have[name] = true
			}
		}
		cur.Close(ctx)

		for _, name := range names {
			if !have[name] {
				t.Errorf("expected index %q to exist on %s collection", name, coll)
			}
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("mentors").InsertOne(ctx, bson.M{"mujid": "MUJ0001", "name": "First"})
	if err != nil {
		t.Fatalf("Insert mentor failed: %v", err)
	}

	// Same registration number a second time must be rejected.
	_, err = db.Collection("mentors").InsertOne(ctx, bson.M{"mujid": "MUJ0001", "name": "Second"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on mentors.mujid")
	}
}
