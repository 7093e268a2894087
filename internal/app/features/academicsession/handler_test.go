// internal/app/features/academicsession/handler_test.go
package academicsession

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	meetingstore "github.com/mentorlink/mentorlink/internal/app/store/meetings"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/txn"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"github.com/mentorlink/mentorlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(
		db.Client(),
		sessionstore.New(db),
		mentorstore.New(db),
		menteestore.New(db),
		meetingstore.New(db),
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

func rolloverBody() map[string]any {
	return map[string]any{
		"currentSession": map[string]any{"start_year": 2024, "end_year": 2025},
		"upcomingSession": map[string]any{
			"start_year":  2024,
			"end_year":    2025,
			"sessionName": "JANUARY-JUNE 2025",
		},
	}
}

// seedRollover sets up one academic year mid-session: a current period
// with mentors, mentees across semesters and a filled meeting history.
func seedRollover(t *testing.T, h *Handler, fx *testutil.Fixtures) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateAcademicSession(ctx, 2024, 2025,
		[]string{"JULY-DECEMBER 2024", "JANUARY-JUNE 2025"}, "JULY-DECEMBER 2024")

	fx.CreateMentor(ctx, "MUJM01", "Mentor One", "m1@muj.edu", "2024-2025", "JULY-DECEMBER 2024")
	fx.CreateMentee(ctx, "CONT1", "Continuing One", "MUJM01", 3, "2024-2025", "JULY-DECEMBER 2024")
	fx.CreateMentee(ctx, "CONT2", "Continuing Two", "MUJM01", 7, "2024-2025", "JULY-DECEMBER 2024")
	fx.CreateMentee(ctx, "GRAD1", "Graduating One", "MUJM01", 8, "2024-2025", "JULY-DECEMBER 2024")

	entry := fx.MeetingEntry(8, []string{"GRAD1"}, []string{"GRAD1"}, true)
	fx.CreateMeetingDoc(ctx, "MUJM01", "2024-2025", "JULY-DECEMBER 2024", entry)
}

func TestChangeToUpcoming(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	seedRollover(t, h, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", rolloverBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stats archiveStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.MenteesGraduated != 1 || stats.MenteesPromoted != 2 {
		t.Errorf("stats = %+v", stats)
	}

	// continuing mentees moved up one semester and were re-tagged
	cont, err := h.Mentees.GetByMujid(ctx, "CONT1")
	if err != nil {
		t.Fatalf("load CONT1: %v", err)
	}
	if cont.Semester != 4 || cont.AcademicSession != "JANUARY-JUNE 2025" {
		t.Errorf("CONT1 = semester %d, session %q", cont.Semester, cont.AcademicSession)
	}

	// graduate removed from live collection
	if _, err := h.Mentees.GetByMujid(ctx, "GRAD1"); err == nil {
		t.Error("GRAD1 still in live collection")
	}

	// graduate captured in the archive with attendance history
	period, err := h.Sessions.GetArchivedPeriod(ctx, 2024, 2025, "JULY-DECEMBER 2024")
	if err != nil {
		t.Fatalf("load archive: %v", err)
	}
	if len(period.GraduatedMentees) != 1 || period.GraduatedMentees[0].MUJid != "GRAD1" {
		t.Fatalf("graduated = %+v", period.GraduatedMentees)
	}
	if len(period.GraduatedMentees[0].Attended) != 1 {
		t.Errorf("graduate attendance history = %+v", period.GraduatedMentees[0].Attended)
	}

	// live meeting docs for the archived period are gone
	n, err := h.Meetings.Count(ctx, bson.M{"academic_session": "JULY-DECEMBER 2024"})
	if err != nil {
		t.Fatalf("count meetings: %v", err)
	}
	if n != 0 {
		t.Errorf("%d live meeting docs survived archival", n)
	}

	// current flag moved to the upcoming period
	_, current, err := h.Sessions.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current != "JANUARY-JUNE 2025" {
		t.Errorf("current = %q", current)
	}

	// mentor re-tagged
	m, err := h.Mentors.GetByMujid(ctx, "MUJM01")
	if err != nil {
		t.Fatalf("load mentor: %v", err)
	}
	if m.AcademicSession != "JANUARY-JUNE 2025" {
		t.Errorf("mentor session = %q", m.AcademicSession)
	}
}

func TestChangeToUpcoming_Rerun(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	seedRollover(t, h, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", rolloverBody()); rec.Code != http.StatusOK {
		t.Fatalf("first rollover: %d, body = %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", rolloverBody())
	if rec.Code != http.StatusConflict {
		t.Fatalf("second rollover: status = %d, want 409, body = %s", rec.Code, rec.Body.String())
	}

	// no double increment
	cont, err := h.Mentees.GetByMujid(ctx, "CONT1")
	if err != nil {
		t.Fatalf("load CONT1: %v", err)
	}
	if cont.Semester != 4 {
		t.Errorf("CONT1 semester = %d after rejected re-run, want 4", cont.Semester)
	}
}

// supportsTransactions reports whether the test deployment can run
// multi-document transactions (standalone servers cannot, and the
// rollback behavior only exists with a real transaction).
func supportsTransactions(t *testing.T, db *mongo.Database) bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := db.Client().StartSession()
	if err != nil {
		return false
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return db.Collection("txn_check").InsertOne(sc, bson.M{"ok": true})
	})
	return !txn.IsNotSupported(err)
}

func TestChangeToUpcoming_MissingUpcomingSession(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	seedRollover(t, h, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body := rolloverBody()
	body["upcomingSession"] = map[string]any{
		"start_year":  2026,
		"end_year":    2027,
		"sessionName": "JULY-DECEMBER 2026",
	}
	rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}

	// no document was minted for the unknown year and nothing rolled over
	if _, err := h.Sessions.GetByYears(ctx, 2026, 2027); err == nil {
		t.Error("rollover created an academic session for the unknown year")
	}
	cont, err := h.Mentees.GetByMujid(ctx, "CONT1")
	if err != nil {
		t.Fatalf("load CONT1: %v", err)
	}
	if cont.Semester != 3 {
		t.Errorf("CONT1 semester = %d after refused rollover, want 3", cont.Semester)
	}
	_, current, err := h.Sessions.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current != "JULY-DECEMBER 2024" {
		t.Errorf("current = %q after refused rollover", current)
	}
}

func TestChangeToUpcoming_FailureRollsBack(t *testing.T) {
	h, fx := newTestHandler(t)
	if !supportsTransactions(t, fx.DB()) {
		t.Skip("mongo deployment does not support transactions")
	}
	router := Routes(h)
	seedRollover(t, h, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The upcoming document exists but the named period does not, so the
	// current-flag flip fails after the archive write, the graduation
	// and the promotion have already run inside the transaction.
	fx.CreateAcademicSession(ctx, 2025, 2026, []string{"JULY-DECEMBER 2025"}, "")
	body := rolloverBody()
	body["upcomingSession"] = map[string]any{
		"start_year":  2025,
		"end_year":    2026,
		"sessionName": "JANUARY-JUNE 2026",
	}
	rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}

	// every write inside the aborted transaction was rolled back
	cont, err := h.Mentees.GetByMujid(ctx, "CONT1")
	if err != nil {
		t.Fatalf("load CONT1: %v", err)
	}
	if cont.Semester != 3 || cont.AcademicSession != "JULY-DECEMBER 2024" {
		t.Errorf("CONT1 = semester %d, session %q after aborted rollover", cont.Semester, cont.AcademicSession)
	}
	if _, err := h.Mentees.GetByMujid(ctx, "GRAD1"); err != nil {
		t.Errorf("aborted rollover deleted GRAD1: %v", err)
	}
	n, err := h.Meetings.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count meetings: %v", err)
	}
	if n != 1 {
		t.Errorf("meeting docs = %d after aborted rollover, want 1", n)
	}
	if _, err := h.Sessions.GetArchivedPeriod(ctx, 2024, 2025, "JULY-DECEMBER 2024"); err == nil {
		t.Error("aborted rollover left an archive snapshot behind")
	}
	_, current, err := h.Sessions.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current != "JULY-DECEMBER 2024" {
		t.Errorf("current = %q after aborted rollover", current)
	}
}

func TestChangeToUpcoming_Validation(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	seedRollover(t, h, fx)

	body := rolloverBody()
	body["upcomingSession"].(map[string]any)["sessionName"] = ""
	rec := doJSON(t, router, http.MethodPut, "/changeToUpcoming", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionName: status = %d, want 400", rec.Code)
	}

	body = rolloverBody()
	body["currentSession"].(map[string]any)["start_year"] = 2030
	rec = doJSON(t, router, http.MethodPut, "/changeToUpcoming", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown outgoing year: status = %d, want 404", rec.Code)
	}
}

func TestArchive(t *testing.T) {
	h, fx := newTestHandler(t)
	router := Routes(h)
	seedRollover(t, h, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := doJSON(t, router, http.MethodPut, "/archive", map[string]any{
		"start_year": 2024, "end_year": 2025,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stats archiveStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.MeetingsArchived != 1 || stats.MentorsArchived != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// archive alone leaves the live collections intact
	if _, err := h.Mentees.GetByMujid(ctx, "GRAD1"); err != nil {
		t.Errorf("archive deleted live mentee: %v", err)
	}
	n, _ := h.Meetings.Count(ctx, bson.M{})
	if n != 1 {
		t.Errorf("archive deleted live meetings, count = %d", n)
	}

	// re-archiving the same period is refused
	rec = doJSON(t, router, http.MethodPut, "/archive", map[string]any{
		"start_year": 2024, "end_year": 2025,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("re-archive: status = %d, want 409", rec.Code)
	}
}

func TestCreateAndGetCurrent(t *testing.T) {
	h, _ := newTestHandler(t)
	router := Routes(h)

	rec := doJSON(t, router, http.MethodPost, "/", map[string]any{
		"start_year": 2025,
		"end_year":   2026,
		"sessions":   []string{"JULY-DECEMBER 2025", "JANUARY-JUNE 2026"},
		"current":    "JULY-DECEMBER 2025",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.AcademicSession
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created session: %v", err)
	}
	if created.StartYear != 2025 || created.EndYear != 2026 {
		t.Fatalf("created = %+v, want the stored 2025-2026 document", created)
	}
	if per := created.Period("JULY-DECEMBER 2025"); per == nil || !per.IsCurrent {
		t.Errorf("created body does not reflect the current flag: %+v", created.Sessions)
	}

	rec = doJSON(t, router, http.MethodGet, "/current", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		AcademicYear    string `json:"academicYear"`
		AcademicSession string `json:"academicSession"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AcademicYear != "2025-2026" || got.AcademicSession != "JULY-DECEMBER 2025" {
		t.Errorf("current = %+v", got)
	}

	// duplicate year pair
	rec = doJSON(t, router, http.MethodPost, "/", map[string]any{
		"start_year": 2025, "end_year": 2026, "sessions": []string{"X"},
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate year: status = %d, want 409", rec.Code)
	}

	// a second current anywhere violates the single-current invariant
	rec = doJSON(t, router, http.MethodPost, "/", map[string]any{
		"start_year": 2026,
		"end_year":   2027,
		"sessions":   []string{"JULY-DECEMBER 2026"},
		"current":    "JULY-DECEMBER 2026",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("second current: status = %d, want 409", rec.Code)
	}
}
