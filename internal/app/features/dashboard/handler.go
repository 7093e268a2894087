// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	meetingstore "github.com/mentorlink/mentorlink/internal/app/store/meetings"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/gates"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler serves the role-aware dashboard. Every signed-in user gets a
// view shaped by their role; there is one endpoint, not one per role.
type Handler struct {
	Mentors  *mentorstore.Store
	Mentees  *menteestore.Store
	Meetings *meetingstore.Store
	Sessions *sessionstore.Store
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(mentors *mentorstore.Store, mentees *menteestore.Store, meetings *meetingstore.Store, sessions *sessionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Mentors:  mentors,
		Mentees:  mentees,
		Meetings: meetings,
		Sessions: sessions,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

// Serve handles GET /api/dashboard.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r)
	if !user.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year, session := "", ""
	if doc, period, err := h.Sessions.GetCurrent(ctx); err == nil {
		year = strconv.Itoa(doc.StartYear) + "-" + strconv.Itoa(doc.EndYear)
		session = period
	}

	switch user.Role {
	case "admin", "superadmin":
		h.adminView(ctx, w, r, year, session)
	case "mentor":
		h.mentorView(ctx, w, r, user.MUJid, year, session)
	default:
		h.menteeView(ctx, w, r, user.MUJid, year, session)
	}
}

func (h *Handler) adminView(ctx context.Context, w http.ResponseWriter, r *http.Request, year, session string) {
	mentorCount, err := h.Mentors.Count(ctx, bson.M{"active": true})
	if err != nil {
		h.Respond.ServerError(w, r, "count mentors", err, "could not load dashboard")
		return
	}
	menteeCount, err := h.Mentees.Count(ctx, bson.M{})
	if err != nil {
		h.Respond.ServerError(w, r, "count mentees", err, "could not load dashboard")
		return
	}

	meetingCount := 0
	unfilled := 0
	if year != "" {
		docs, err := h.Meetings.ListBySession(ctx, year, session)
		if err != nil {
			h.Respond.ServerError(w, r, "list meetings", err, "could not load dashboard")
			return
		}
		for _, doc := range docs {
			meetingCount += len(doc.Meetings)
			for _, e := range doc.Meetings {
				if !e.ReportFilled {
					unfilled++
				}
			}
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"role":            "admin",
		"academicYear":    year,
		"academicSession": session,
		"mentors":         mentorCount,
		"mentees":         menteeCount,
		"meetings":        meetingCount,
		"unfilledReports": unfilled,
	})
}

func (h *Handler) mentorView(ctx context.Context, w http.ResponseWriter, r *http.Request, mujid, year, session string) {
	mentees, err := h.Mentees.ListByMentor(ctx, mujid)
	if err != nil {
		h.Respond.ServerError(w, r, "list mentees", err, "could not load dashboard")
		return
	}

	meetingCount, unfilled := 0, 0
	if year != "" {
		doc, err := h.Meetings.GetByMentor(ctx, mujid, year, session)
		if err != nil && !errors.Is(err, meetingstore.ErrNotFound) {
			h.Respond.ServerError(w, r, "load meetings", err, "could not load dashboard")
			return
		}
		meetingCount = len(doc.Meetings)
		for _, e := range doc.Meetings {
			if !e.ReportFilled {
				unfilled++
			}
		}
	}

	if mentees == nil {
		mentees = []models.Mentee{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"role":            "mentor",
		"academicYear":    year,
		"academicSession": session,
		"mentees":         mentees,
		"menteeCount":     len(mentees),
		"meetings":        meetingCount,
		"unfilledReports": unfilled,
	})
}

func (h *Handler) menteeView(ctx context.Context, w http.ResponseWriter, r *http.Request, mujid, year, session string) {
	mentee, err := h.Mentees.GetByMujid(ctx, mujid)
	if errors.Is(err, menteestore.ErrNotFound) {
		h.Respond.NotFound(w, r, "mentee record not found")
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "load mentee", err, "could not load dashboard")
		return
	}

	view := map[string]any{
		"role":             "mentee",
		"academicYear":     year,
		"academicSession":  session,
		"semester":         mentee.Semester,
		"meetingsInvited":  0,
		"meetingsAttended": 0,
	}

	if mentor, err := h.Mentors.GetByMujid(ctx, mentee.MentorMujid); err == nil {
		view["mentor"] = map[string]string{
			"MUJid": mentor.MUJid,
			"name":  mentor.Name,
			"email": mentor.Email,
		}
	}

	if year != "" && mentee.MentorMujid != "" {
		doc, err := h.Meetings.GetByMentor(ctx, mentee.MentorMujid, year, session)
		if err != nil && !errors.Is(err, meetingstore.ErrNotFound) {
			h.Respond.ServerError(w, r, "load meetings", err, "could not load dashboard")
			return
		}
		invited, attended := 0, 0
		for _, e := range doc.Meetings {
			for _, id := range e.MenteesInvited {
				if id == mujid {
					invited++
					break
				}
			}
			for _, id := range e.MenteesPresent {
				if id == mujid {
					attended++
					break
				}
			}
		}
		view["meetingsInvited"] = invited
		view["meetingsAttended"] = attended
	}

	respond.JSON(w, http.StatusOK, view)
}
