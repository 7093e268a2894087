// internal/app/features/academicsession/handler.go
package academicsession

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	meetingstore "github.com/mentorlink/mentorlink/internal/app/store/meetings"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/app/system/txn"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the academic session lifecycle: session CRUD, period
// archival, and the end-of-session rollover.
type Handler struct {
	Client   *mongo.Client
	Sessions *sessionstore.Store
	Mentors  *mentorstore.Store
	Mentees  *menteestore.Store
	Meetings *meetingstore.Store
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(client *mongo.Client, sessions *sessionstore.Store, mentors *mentorstore.Store, mentees *menteestore.Store, meetings *meetingstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Sessions: sessions,
		Mentors:  mentors,
		Mentees:  mentees,
		Meetings: meetings,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

func yearLabel(startYear, endYear int) string {
	return strconv.Itoa(startYear) + "-" + strconv.Itoa(endYear)
}

type createPayload struct {
	StartYear int      `json:"start_year"`
	EndYear   int      `json:"end_year"`
	Sessions  []string `json:"sessions"`
	Current   string   `json:"current,omitempty"`
}

// Create handles POST /api/admin/academicSession: a new academic year
// with its named periods. The optional "current" field flags one of
// them current, refusing if any other period already is.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	if p.StartYear <= 0 || p.EndYear <= 0 || p.EndYear != p.StartYear+1 {
		h.Respond.BadRequest(w, r, "start_year and end_year must be consecutive years")
		return
	}
	if len(p.Sessions) == 0 {
		h.Respond.BadRequest(w, r, "at least one session period is required")
		return
	}
	names := make([]string, 0, len(p.Sessions))
	for _, raw := range p.Sessions {
		name := strings.ToUpper(strings.TrimSpace(raw))
		if name == "" {
			h.Respond.BadRequest(w, r, "session period names must be non-empty")
			return
		}
		names = append(names, name)
	}
	current := strings.ToUpper(strings.TrimSpace(p.Current))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.Sessions.Create(ctx, p.StartYear, p.EndYear, names)
	switch {
	case errors.Is(err, sessionstore.ErrDuplicateSession):
		h.Respond.Conflict(w, r, "an academic session for these years already exists")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "create session", err, "could not create academic session")
		return
	}

	if current != "" {
		err = txn.WithTransaction(ctx, h.Client, h.Log, func(sc mongo.SessionContext) error {
			return h.Sessions.SetCurrent(sc, p.StartYear, p.EndYear, current)
		})
		switch {
		case errors.Is(err, sessionstore.ErrCurrentExists):
			h.Respond.Conflict(w, r, "another session period is already current")
			return
		case errors.Is(err, sessionstore.ErrPeriodNotFound):
			h.Respond.BadRequest(w, r, "current must name one of the created periods")
			return
		case err != nil:
			h.Respond.ServerError(w, r, "set current", err, "could not flag current period")
			return
		}
		doc, err = h.Sessions.GetByYears(ctx, p.StartYear, p.EndYear)
		if err != nil {
			h.Respond.ServerError(w, r, "reload session", err, "could not load created session")
			return
		}
	}
	respond.JSON(w, http.StatusCreated, doc)
}

// GetCurrent handles GET /api/admin/academicSession/current.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	doc, period, err := h.Sessions.GetCurrent(ctx)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound), errors.Is(err, sessionstore.ErrPeriodNotFound):
		h.Respond.NotFound(w, r, "no current academic session")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "load current session", err, "could not load current session")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"academicYear":    yearLabel(doc.StartYear, doc.EndYear),
		"academicSession": period,
		"start_year":      doc.StartYear,
		"end_year":        doc.EndYear,
	})
}

// List handles GET /api/admin/academicSession.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	docs, err := h.Sessions.List(ctx)
	if err != nil {
		h.Respond.ServerError(w, r, "list sessions", err, "could not list academic sessions")
		return
	}
	if docs == nil {
		docs = []models.AcademicSession{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"sessions": docs, "count": len(docs)})
}

type yearsPayload struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// archiveStats reports what one archival or rollover touched.
type archiveStats struct {
	AcademicYear     string `json:"academicYear"`
	AcademicSession  string `json:"academicSession"`
	MentorsArchived  int    `json:"mentorsArchived"`
	MenteesGraduated int    `json:"menteesGraduated"`
	MeetingsArchived int    `json:"meetingsArchived"`
	MeetingPages     int    `json:"meetingPages"`

	// rollover-only fields
	MenteesPromoted    int64 `json:"menteesPromoted,omitempty"`
	MentorsRetagged    int64 `json:"mentorsRetagged,omitempty"`
	MeetingDocsDeleted int64 `json:"meetingDocsDeleted,omitempty"`
}

// Archive handles PUT /api/admin/academicSession/archive: build and
// persist a snapshot of the given year's current period. The period
// loses its current flag; archived periods can never be current. Live
// collections are untouched; only /changeToUpcoming promotes and
// deletes.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	var p yearsPayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	if p.StartYear <= 0 || p.EndYear <= 0 {
		h.Respond.BadRequest(w, r, "start_year and end_year are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	doc, err := h.Sessions.GetByYears(ctx, p.StartYear, p.EndYear)
	if errors.Is(err, sessionstore.ErrNotFound) {
		h.Respond.NotFound(w, r, "academic session not found")
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "load session", err, "could not load academic session")
		return
	}
	period, err := currentPeriodOf(doc)
	if err != nil {
		h.respondPeriodErr(w, r, err)
		return
	}

	var stats archiveStats
	err = txn.WithTransaction(ctx, h.Client, h.Log, func(sc mongo.SessionContext) error {
		snap, err := h.loadAndBuild(sc, p.StartYear, p.EndYear, period)
		if err != nil {
			return err
		}
		if err := h.Sessions.SaveArchive(sc, p.StartYear, p.EndYear, period,
			snap.Semesters, snap.Mentors, snap.Graduated); err != nil {
			return err
		}
		stats = archiveStats{
			AcademicYear:     yearLabel(p.StartYear, p.EndYear),
			AcademicSession:  period,
			MentorsArchived:  len(snap.Mentors),
			MenteesGraduated: len(snap.Graduated),
			MeetingsArchived: snap.MeetingsArchived,
			MeetingPages:     snap.MeetingPages,
		}
		return nil
	})
	if err != nil {
		h.respondPeriodErr(w, r, err)
		return
	}

	h.Log.Info("session archived",
		zap.String("year", stats.AcademicYear),
		zap.String("session", stats.AcademicSession),
		zap.Int("meetings", stats.MeetingsArchived))
	respond.JSON(w, http.StatusOK, stats)
}

type rolloverPayload struct {
	CurrentSession  yearsPayload `json:"currentSession"`
	UpcomingSession struct {
		StartYear   int    `json:"start_year"`
		EndYear     int    `json:"end_year"`
		SessionName string `json:"sessionName"`
	} `json:"upcomingSession"`
}

// ChangeToUpcoming handles PUT /api/admin/academicSession/changeToUpcoming,
// the end-of-session rollover. Inside one transaction it archives the
// outgoing period, removes graduated mentees, promotes the rest by one
// semester, deletes the archived live meeting documents, flips the
// current flag to the upcoming period and re-tags every active mentor.
// Any failure aborts the whole rollover.
//
// Running it twice for the same outgoing period is refused with 409;
// the archive guard makes the operation idempotent-by-rejection.
func (h *Handler) ChangeToUpcoming(w http.ResponseWriter, r *http.Request) {
	var p rolloverPayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	up := p.UpcomingSession
	up.SessionName = strings.ToUpper(strings.TrimSpace(up.SessionName))
	switch {
	case p.CurrentSession.StartYear <= 0 || p.CurrentSession.EndYear <= 0:
		h.Respond.BadRequest(w, r, "currentSession start_year and end_year are required")
		return
	case up.StartYear <= 0 || up.EndYear <= 0 || up.SessionName == "":
		h.Respond.BadRequest(w, r, "upcomingSession start_year, end_year and sessionName are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	outDoc, err := h.Sessions.GetByYears(ctx, p.CurrentSession.StartYear, p.CurrentSession.EndYear)
	if errors.Is(err, sessionstore.ErrNotFound) {
		h.Respond.NotFound(w, r, "outgoing academic session not found")
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "load outgoing session", err, "could not load academic session")
		return
	}
	outPeriod, err := currentPeriodOf(outDoc)
	if err != nil {
		h.respondPeriodErr(w, r, err)
		return
	}

	// a rollover into the period that is already current is a re-run
	if outDoc.StartYear == up.StartYear && outDoc.EndYear == up.EndYear && outPeriod == up.SessionName {
		h.Respond.Conflict(w, r, "upcoming period is already current")
		return
	}

	// the upcoming session must already exist; refusing here keeps a
	// typo'd year from committing a rollover into a freshly minted doc
	upDoc, err := h.Sessions.GetByYears(ctx, up.StartYear, up.EndYear)
	if errors.Is(err, sessionstore.ErrNotFound) {
		h.Respond.NotFound(w, r, "upcoming academic session not found")
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "load upcoming session", err, "could not load upcoming session")
		return
	}
	if per := upDoc.Period(up.SessionName); per != nil && per.IsArchived {
		h.Respond.Conflict(w, r, "upcoming period is already archived")
		return
	}

	outYear := yearLabel(outDoc.StartYear, outDoc.EndYear)
	upYear := yearLabel(up.StartYear, up.EndYear)

	var stats archiveStats
	err = txn.WithTransaction(ctx, h.Client, h.Log, func(sc mongo.SessionContext) error {
		snap, err := h.loadAndBuild(sc, outDoc.StartYear, outDoc.EndYear, outPeriod)
		if err != nil {
			return err
		}

		// archive first: graduated mentees must be snapshotted before
		// their live records go away
		if err := h.Sessions.SaveArchive(sc, outDoc.StartYear, outDoc.EndYear, outPeriod,
			snap.Semesters, snap.Mentors, snap.Graduated); err != nil {
			return err
		}
		if _, err := h.Mentees.DeleteGraduated(sc); err != nil {
			return err
		}
		promoted, err := h.Mentees.PromoteContinuing(sc, upYear, up.SessionName)
		if err != nil {
			return err
		}
		docsDeleted, err := h.Meetings.DeleteBySession(sc, outYear, outPeriod)
		if err != nil {
			return err
		}
		if err := h.Sessions.SetCurrent(sc, up.StartYear, up.EndYear, up.SessionName); err != nil {
			return err
		}
		retagged, err := h.Mentors.RetagSession(sc, upYear, up.SessionName)
		if err != nil {
			return err
		}

		stats = archiveStats{
			AcademicYear:       outYear,
			AcademicSession:    outPeriod,
			MentorsArchived:    len(snap.Mentors),
			MenteesGraduated:   len(snap.Graduated),
			MeetingsArchived:   snap.MeetingsArchived,
			MeetingPages:       snap.MeetingPages,
			MenteesPromoted:    promoted,
			MentorsRetagged:    retagged,
			MeetingDocsDeleted: docsDeleted,
		}
		return nil
	})
	if err != nil {
		h.respondPeriodErr(w, r, err)
		return
	}

	h.Log.Info("session rollover complete",
		zap.String("from", outYear+" "+outPeriod),
		zap.String("to", upYear+" "+up.SessionName),
		zap.Int64("promoted", stats.MenteesPromoted),
		zap.Int("graduated", stats.MenteesGraduated))
	respond.JSON(w, http.StatusOK, stats)
}

// loadAndBuild reads the live collections through sc and assembles the
// snapshot for one period.
func (h *Handler) loadAndBuild(sc mongo.SessionContext, startYear, endYear int, period string) (snapshot, error) {
	year := yearLabel(startYear, endYear)

	mentors, err := h.Mentors.List(sc, bson.M{})
	if err != nil {
		return snapshot{}, err
	}
	mentees, err := h.Mentees.List(sc, bson.M{})
	if err != nil {
		return snapshot{}, err
	}
	docs, err := h.Meetings.ListBySession(sc, year, period)
	if err != nil {
		return snapshot{}, err
	}
	return buildSnapshot(mentors, mentees, docs, time.Now().UTC()), nil
}

// currentPeriodOf picks the period flagged current within one academic
// year document. An already-archived year yields ErrAlreadyArchived so
// callers can answer 409.
func currentPeriodOf(doc models.AcademicSession) (string, error) {
	for _, p := range doc.Sessions {
		if p.IsCurrent {
			return p.Name, nil
		}
	}
	for _, p := range doc.Sessions {
		if p.IsArchived {
			return "", sessionstore.ErrAlreadyArchived
		}
	}
	return "", sessionstore.ErrPeriodNotFound
}

func (h *Handler) respondPeriodErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sessionstore.ErrAlreadyArchived):
		h.Respond.Conflict(w, r, "session period is already archived")
	case errors.Is(err, sessionstore.ErrCurrentExists):
		h.Respond.Conflict(w, r, "another session period is already current")
	case errors.Is(err, sessionstore.ErrNotFound):
		h.Respond.NotFound(w, r, "academic session not found")
	case errors.Is(err, sessionstore.ErrPeriodNotFound):
		h.Respond.NotFound(w, r, "no current period for this academic session")
	default:
		h.Respond.ServerError(w, r, "session lifecycle", err, "operation failed")
	}
}
