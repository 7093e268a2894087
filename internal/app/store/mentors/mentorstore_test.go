package mentorstore_test

import (
	"errors"
	"testing"

	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/indexes"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"github.com/mentorlink/mentorlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func newStore(t *testing.T) *mentorstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return mentorstore.New(db)
}

func sample() models.Mentor {
	return models.Mentor{
		MUJid:           "MUJM01",
		Name:            "Dr. Asha Rao",
		Email:           "asha.rao@example.com",
		Phone:           "+919876543210",
		Active:          true,
		AcademicYear:    "2024-2025",
		AcademicSession: "JULY-DECEMBER 2024",
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, sample())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected folded name to be set")
	}
	if len(created.Roles) != 1 || created.Roles[0] != models.RoleMentor {
		t.Errorf("expected default mentor role, got %v", created.Roles)
	}

	got, err := store.GetByMujid(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if got.Email != "asha.rao@example.com" {
		t.Errorf("Email = %q", got.Email)
	}

	byEmail, err := store.GetByEmail(ctx, "asha.rao@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.MUJid != "MUJM01" {
		t.Errorf("MUJid = %q", byEmail.MUJid)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, sample()); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, sample())
	if !errors.Is(err, mentorstore.ErrDuplicateMentor) {
		t.Errorf("expected ErrDuplicateMentor, got %v", err)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByMujid(ctx, "MISSING")
	if !errors.Is(err, mentorstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, sample()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := store.Update(ctx, "MUJM01", models.Mentor{Name: "Dr. Asha R. Rao", Phone: "+911112223334"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByMujid(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if got.Name != "Dr. Asha R. Rao" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Phone != "+911112223334" {
		t.Errorf("Phone = %q", got.Phone)
	}
	// Untouched fields survive
	if got.Email != "asha.rao@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Update(ctx, "MISSING", models.Mentor{Name: "Nobody"})
	if !errors.Is(err, mentorstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, sample()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}

	n, err = store.Delete(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d, want 0", n)
	}
}

func TestStore_RetagSession(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := sample()
	if _, err := store.Create(ctx, active); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inactive := sample()
	inactive.MUJid = "MUJM02"
	inactive.Email = "other@example.com"
	inactive.Active = false
	if _, err := store.Create(ctx, inactive); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.RetagSession(ctx, "2025-2026", "JANUARY-JUNE 2025")
	if err != nil {
		t.Fatalf("RetagSession failed: %v", err)
	}
	if n != 1 {
		t.Errorf("retagged %d mentors, want 1 (inactive mentors stay put)", n)
	}

	got, err := store.GetByMujid(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("GetByMujid failed: %v", err)
	}
	if got.AcademicSession != "JANUARY-JUNE 2025" {
		t.Errorf("AcademicSession = %q", got.AcademicSession)
	}

	// No mentor was deleted by the retag.
	count, err := store.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
