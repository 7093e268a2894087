// internal/app/features/meetings/handler.go
package meetings

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	meetingstore "github.com/mentorlink/mentorlink/internal/app/store/meetings"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	"github.com/mentorlink/mentorlink/internal/app/system/gates"
	"github.com/mentorlink/mentorlink/internal/app/system/htmlsanitize"
	"github.com/mentorlink/mentorlink/internal/app/system/mailer"
	"github.com/mentorlink/mentorlink/internal/app/system/normalize"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the mentor-facing meeting endpoints: schedule a
// meeting, file or amend its report, and list meetings with attendance.
type Handler struct {
	Meetings *meetingstore.Store
	Mentees  *menteestore.Store
	Sessions *sessionstore.Store
	Mail     *mailer.Queue
	SiteName string
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(meetings *meetingstore.Store, mentees *menteestore.Store, sessions *sessionstore.Store, mail *mailer.Queue, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Meetings: meetings,
		Mentees:  mentees,
		Sessions: sessions,
		Mail:     mail,
		SiteName: siteName,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

// currentPeriod resolves the live academic period; meetings always
// attach to it.
func (h *Handler) currentPeriod(ctx context.Context) (year, session string, err error) {
	doc, period, err := h.Sessions.GetCurrent(ctx)
	if err != nil {
		return "", "", err
	}
	return yearLabel(doc), period, nil
}

type schedulePayload struct {
	Date           time.Time `json:"date"`
	Semester       int       `json:"semester"`
	MenteesInvited []string  `json:"menteesInvited"`
}

// Schedule handles POST /api/mentor/meetings. The entry is appended to
// the caller's meeting document for the current period; the document is
// created on the first meeting. Invited mentees are notified by email
// after the write, outside any transaction.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireMentor(w, r)
	if !user.OK {
		return
	}

	var p schedulePayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	if p.Date.IsZero() {
		h.Respond.BadRequest(w, r, "date is required")
		return
	}
	if p.Semester < models.MinSemester || p.Semester > models.MaxSemester {
		h.Respond.BadRequest(w, r, "semester must be between 1 and 8")
		return
	}
	if len(p.MenteesInvited) == 0 {
		h.Respond.BadRequest(w, r, "at least one mentee must be invited")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year, session, err := h.currentPeriod(ctx)
	if err != nil {
		h.Respond.ServerError(w, r, "resolve current session", err, "no current academic session")
		return
	}

	invited := make([]string, 0, len(p.MenteesInvited))
	seen := map[string]bool{}
	for _, raw := range p.MenteesInvited {
		mujid := normalize.MUJid(raw)
		if mujid == "" || seen[mujid] {
			continue
		}
		seen[mujid] = true
		invited = append(invited, mujid)
	}

	// invitees must be the caller's own mentees
	mine, err := h.Mentees.ListByMentor(ctx, user.MUJid)
	if err != nil {
		h.Respond.ServerError(w, r, "list mentees", err, "could not load mentees")
		return
	}
	byMujid := make(map[string]models.Mentee, len(mine))
	for _, m := range mine {
		byMujid[m.MUJid] = m
	}
	for _, mujid := range invited {
		if _, ok := byMujid[mujid]; !ok {
			h.Respond.BadRequest(w, r, mujid+" is not one of your mentees")
			return
		}
	}

	now := time.Now().UTC()
	entry := models.MeetingEntry{
		MeetingID:      uuid.NewString(),
		Date:           p.Date.UTC(),
		Semester:       p.Semester,
		MenteesInvited: invited,
		MenteesPresent: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.Meetings.AddEntry(ctx, user.MUJid, year, session, entry); err != nil {
		h.Respond.ServerError(w, r, "schedule meeting", err, "could not schedule meeting")
		return
	}

	h.notifyInvited(user.Name, entry, invited, byMujid)

	h.Log.Info("meeting scheduled",
		zap.String("mentor", user.MUJid),
		zap.String("meeting_id", entry.MeetingID),
		zap.Int("invited", len(invited)))
	respond.JSON(w, http.StatusCreated, entry)
}

// notifyInvited enqueues one notice per invited mentee. Enqueue
// failures are logged and dropped; the meeting itself already exists.
func (h *Handler) notifyInvited(mentorName string, entry models.MeetingEntry, invited []string, byMujid map[string]models.Mentee) {
	if h.Mail == nil {
		return
	}
	notice := mailer.BuildMeetingNotice(mailer.MeetingNoticeData{
		SiteName:   h.SiteName,
		MentorName: mentorName,
		Date:       entry.Date,
		Semester:   entry.Semester,
	})
	for _, mujid := range invited {
		m, ok := byMujid[mujid]
		if !ok || m.Email == "" {
			continue
		}
		e := notice
		e.To = m.Email
		if err := h.Mail.Enqueue(e); err != nil {
			h.Log.Warn("meeting notice dropped",
				zap.String("mentee", mujid), zap.Error(err))
		}
	}
}

type reportPayload struct {
	MenteesPresent []string            `json:"menteesPresent"`
	Notes          models.MeetingNotes `json:"notes"`
}

func (p *reportPayload) sanitize() {
	for i, raw := range p.MenteesPresent {
		p.MenteesPresent[i] = normalize.MUJid(raw)
	}
	p.Notes.TopicOfDiscussion = htmlsanitize.Strict(p.Notes.TopicOfDiscussion)
	p.Notes.TypeOfInformation = htmlsanitize.Strict(p.Notes.TypeOfInformation)
	p.Notes.NotesToStudent = htmlsanitize.Strict(p.Notes.NotesToStudent)
	p.Notes.Outcome = htmlsanitize.Strict(p.Notes.Outcome)
	p.Notes.ClosureRemarks = htmlsanitize.Strict(p.Notes.ClosureRemarks)
}

// FileReport handles POST /api/mentor/meetings/{meetingID}/report.
// Filing is one-shot; an already-filled report returns 409 and must be
// amended through UpdateReport.
func (h *Handler) FileReport(w http.ResponseWriter, r *http.Request) {
	h.writeReport(w, r, false)
}

// UpdateReport handles PUT /api/mentor/meetings/{meetingID}/report.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	h.writeReport(w, r, true)
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, amend bool) {
	user := gates.RequireMentor(w, r)
	if !user.OK {
		return
	}
	meetingID := chi.URLParam(r, "meetingID")

	var p reportPayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	p.sanitize()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year, session, err := h.currentPeriod(ctx)
	if err != nil {
		h.Respond.ServerError(w, r, "resolve current session", err, "no current academic session")
		return
	}

	entry, err := h.Meetings.FindEntry(ctx, user.MUJid, year, session, meetingID)
	switch {
	case errors.Is(err, meetingstore.ErrNotFound):
		h.Respond.NotFound(w, r, "meeting not found")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "load meeting", err, "could not load meeting")
		return
	}

	// only invited mentees can be marked present
	invited := make(map[string]bool, len(entry.MenteesInvited))
	for _, mujid := range entry.MenteesInvited {
		invited[mujid] = true
	}
	for _, mujid := range p.MenteesPresent {
		if !invited[mujid] {
			h.Respond.BadRequest(w, r, mujid+" was not invited to this meeting")
			return
		}
	}

	if amend {
		err = h.Meetings.UpdateReport(ctx, user.MUJid, year, session, meetingID, p.MenteesPresent, p.Notes)
	} else {
		err = h.Meetings.FillReport(ctx, user.MUJid, year, session, meetingID, p.MenteesPresent, p.Notes)
	}
	switch {
	case errors.Is(err, meetingstore.ErrReportFilled):
		h.Respond.Conflict(w, r, "report already filled")
		return
	case errors.Is(err, meetingstore.ErrNotFound):
		h.Respond.NotFound(w, r, "meeting not found")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "write report", err, "could not save report")
		return
	}

	updated, err := h.Meetings.FindEntry(ctx, user.MUJid, year, session, meetingID)
	if err != nil {
		h.Respond.ServerError(w, r, "reload meeting", err, "could not load meeting")
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// meetingView is a list row: the entry plus its attendance summary.
type meetingView struct {
	models.MeetingEntry
	Attendance models.Attendance `json:"attendance"`
}

// List handles GET /api/mentor/meetings: the caller's meetings for the
// current period with attendance counts, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireMentor(w, r)
	if !user.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year, session, err := h.currentPeriod(ctx)
	if err != nil {
		h.Respond.ServerError(w, r, "resolve current session", err, "no current academic session")
		return
	}

	doc, err := h.Meetings.GetByMentor(ctx, user.MUJid, year, session)
	if errors.Is(err, meetingstore.ErrNotFound) {
		respond.JSON(w, http.StatusOK, map[string]any{"meetings": []meetingView{}, "count": 0})
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "load meetings", err, "could not load meetings")
		return
	}

	views := make([]meetingView, 0, len(doc.Meetings))
	for _, entry := range doc.Meetings {
		views = append(views, meetingView{
			MeetingEntry: entry,
			Attendance:   models.ComputeAttendance(len(entry.MenteesInvited), len(entry.MenteesPresent)),
		})
	}
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	respond.JSON(w, http.StatusOK, map[string]any{"meetings": views, "count": len(views)})
}

func yearLabel(doc models.AcademicSession) string {
	return strconv.Itoa(doc.StartYear) + "-" + strconv.Itoa(doc.EndYear)
}
