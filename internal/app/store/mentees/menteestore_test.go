package menteestore_test

import (
	"errors"
	"testing"

	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	"github.com/mentorlink/mentorlink/internal/app/system/indexes"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"github.com/mentorlink/mentorlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func newStore(t *testing.T) *menteestore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return menteestore.New(db)
}

func sample(mujid string, semester int) models.Mentee {
	return models.Mentee{
		MUJid:           mujid,
		Name:            "Student " + mujid,
		Email:           mujid + "@example.com",
		Semester:        semester,
		MentorMujid:     "MUJM01",
		AcademicYear:    "2024-2025",
		AcademicSession: "JULY-DECEMBER 2024",
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, sample("MUJ2024001", 3))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}

	got, err := store.GetByMujid(ctx, "MUJ2024001")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if got.Semester != 3 {
		t.Errorf("Semester = %d, want 3", got.Semester)
	}
	if got.MentorMujid != "MUJM01" {
		t.Errorf("MentorMujid = %q", got.MentorMujid)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, sample("MUJ2024001", 3)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, sample("MUJ2024001", 3))
	if !errors.Is(err, menteestore.ErrDuplicateMentee) {
		t.Errorf("expected ErrDuplicateMentee, got %v", err)
	}
}

func TestStore_CreateMany_SkipsDuplicates(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, sample("MUJ2024001", 3)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inserted, err := store.CreateMany(ctx, []models.Mentee{
		sample("MUJ2024001", 3), // already present
		sample("MUJ2024002", 4),
		sample("MUJ2024003", 5),
	})
	if !errors.Is(err, menteestore.ErrDuplicateMentee) {
		t.Errorf("expected ErrDuplicateMentee, got %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2 (unordered insert continues past duplicates)", inserted)
	}
}

func TestStore_ListByMentor(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, m := range []models.Mentee{
		sample("MUJ2024001", 5),
		sample("MUJ2024002", 3),
	} {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	other := sample("MUJ2024003", 3)
	other.MentorMujid = "MUJM02"
	if _, err := store.Create(ctx, other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListByMentor(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("ListByMentor failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d mentees, want 2", len(got))
	}
	// Sorted by semester first
	if got[0].Semester != 3 || got[1].Semester != 5 {
		t.Errorf("semesters = %d, %d, want 3, 5", got[0].Semester, got[1].Semester)
	}
}

func TestStore_Partition(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, m := range []models.Mentee{
		sample("MUJ2021001", 8),
		sample("MUJ2024001", 3),
		sample("MUJ2021002", 8),
	} {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	continuing, graduating, err := store.Partition(ctx)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(continuing) != 1 || len(graduating) != 2 {
		t.Errorf("partition = %d continuing, %d graduating, want 1, 2", len(continuing), len(graduating))
	}
}

func TestStore_PromoteContinuing(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, m := range []models.Mentee{
		sample("MUJ2024001", 3),
		sample("MUJ2021001", 8), // graduating, must not move
	} {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.PromoteContinuing(ctx, "2025-2026", "JANUARY-JUNE 2025")
	if err != nil {
		t.Fatalf("PromoteContinuing failed: %v", err)
	}
	if n != 1 {
		t.Errorf("promoted %d, want 1", n)
	}

	promoted, err := store.GetByMujid(ctx, "MUJ2024001")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if promoted.Semester != 4 {
		t.Errorf("Semester = %d, want 4 (exactly one increment)", promoted.Semester)
	}
	if promoted.AcademicSession != "JANUARY-JUNE 2025" {
		t.Errorf("AcademicSession = %q", promoted.AcademicSession)
	}

	grad, err := store.GetByMujid(ctx, "MUJ2021001")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if grad.Semester != 8 {
		t.Errorf("graduating mentee semester = %d, want 8", grad.Semester)
	}
}

func TestStore_DeleteGraduated(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, m := range []models.Mentee{
		sample("MUJ2024001", 3),
		sample("MUJ2021001", 8),
		sample("MUJ2021002", 8),
	} {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.DeleteGraduated(ctx)
	if err != nil {
		t.Fatalf("DeleteGraduated failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	count, err := store.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
