// internal/app/features/mentors/handler_test.go
package mentors

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"github.com/mentorlink/mentorlink/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(
		mentorstore.New(db),
		menteestore.New(db),
		sessionstore.New(db),
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db)
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateMentor(t *testing.T) {
	h, _ := newTestHandler(t)
	router := Routes(h)

	rec := doJSON(t, router, http.MethodPost, "/", map[string]any{
		"MUJid": "mujm100",
		"name":  "Dr. Asha Verma",
		"email": "Asha.Verma@muj.edu",
		"phone": "9876543210",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got models.Mentor
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MUJid != "MUJM100" {
		t.Errorf("MUJid = %q, want uppercased MUJM100", got.MUJid)
	}
	if got.Email != "asha.verma@muj.edu" {
		t.Errorf("Email = %q, want lowercased", got.Email)
	}
	if !got.Active {
		t.Error("new mentor should be active")
	}
	if len(got.Roles) != 1 || got.Roles[0] != models.RoleMentor {
		t.Errorf("Roles = %v, want default [mentor]", got.Roles)
	}
}

func TestCreateMentor_Duplicate(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMentor(ctx, "MUJM101", "First Mentor", "first@muj.edu", "2024-2025", "JULY-DECEMBER 2024")

	rec := doJSON(t, router, http.MethodPost, "/", map[string]any{
		"MUJid": "MUJM101",
		"name":  "Second Mentor",
		"email": "second@muj.edu",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCreateMentor_Validation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := Routes(h)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing mujid", map[string]any{"name": "X", "email": "x@muj.edu"}},
		{"missing name", map[string]any{"MUJid": "MUJM1", "email": "x@muj.edu"}},
		{"bad email", map[string]any{"MUJid": "MUJM1", "name": "X", "email": "not-an-email"}},
		{"bad role", map[string]any{"MUJid": "MUJM1", "name": "X", "email": "x@muj.edu", "roles": []string{"wizard"}}},
		{"malformed mujid", map[string]any{"MUJid": "AB-12!", "name": "X", "email": "x@muj.edu"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetMentor(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMentor(ctx, "MUJM102", "Lookup Mentor", "lookup@muj.edu", "2024-2025", "JULY-DECEMBER 2024")

	rec := doJSON(t, router, http.MethodGet, "/mujm102", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got models.Mentor
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Lookup Mentor" {
		t.Errorf("Name = %q", got.Name)
	}

	rec = doJSON(t, router, http.MethodGet, "/MUJM999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing mentor: status = %d, want 404", rec.Code)
	}
}

func TestListMentors(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMentor(ctx, "MUJM103", "Active Mentor", "active@muj.edu", "2024-2025", "JULY-DECEMBER 2024")
	inactive := fx.CreateMentor(ctx, "MUJM104", "Inactive Mentor", "inactive@muj.edu", "2024-2025", "JULY-DECEMBER 2024")
	if err := h.Mentors.SetActive(ctx, inactive.MUJid, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all struct {
		Mentors []models.Mentor `json:"mentors"`
		Count   int             `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if all.Count != 2 {
		t.Errorf("count = %d, want 2", all.Count)
	}

	rec = doJSON(t, router, http.MethodGet, "/?active=true", nil)
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if all.Count != 1 || all.Mentors[0].MUJid != "MUJM103" {
		t.Errorf("active filter returned %v", all.Mentors)
	}
}

func TestUpdateMentor(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMentor(ctx, "MUJM105", "Old Name", "old@muj.edu", "2024-2025", "JULY-DECEMBER 2024")

	rec := doJSON(t, router, http.MethodPut, "/MUJM105", map[string]any{
		"name": "New Name",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got models.Mentor
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Email != "old@muj.edu" {
		t.Errorf("Email changed unexpectedly: %q", got.Email)
	}

	rec = doJSON(t, router, http.MethodPut, "/MUJM999", map[string]any{"name": "X"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing mentor: status = %d, want 404", rec.Code)
	}
}

func TestDeleteMentor(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMentor(ctx, "MUJM106", "Busy Mentor", "busy@muj.edu", "2024-2025", "JULY-DECEMBER 2024")
	fx.CreateMentee(ctx, "MUJ2024050", "Assigned Mentee", "MUJM106", 3, "2024-2025", "JULY-DECEMBER 2024")

	rec := doJSON(t, router, http.MethodDelete, "/MUJM106", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("mentor with mentees: status = %d, want 409", rec.Code)
	}

	if _, err := h.Mentees.Delete(ctx, "MUJ2024050"); err != nil {
		t.Fatalf("delete mentee: %v", err)
	}

	rec = doJSON(t, router, http.MethodDelete, "/MUJM106", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/MUJM106", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("already deleted: status = %d, want 404", rec.Code)
	}
}
