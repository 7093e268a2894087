// internal/app/features/archive/handler.go
package archive

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves read-only views over archived session snapshots and
// generates downloadable workbook reports from them.
type Handler struct {
	Sessions *sessionstore.Store
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(sessions *sessionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

// placeholder stands in for snapshot fields that were empty at archive
// time so downstream consumers never see blank cells.
const placeholder = "N/A"

// parseYears splits an "2024-2025" academic year label.
func parseYears(label string) (startYear, endYear int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(label), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || start <= 0 || end != start+1 {
		return 0, 0, false
	}
	return start, end, true
}

func (h *Handler) loadPeriod(w http.ResponseWriter, r *http.Request) (models.SessionPeriod, string, string, bool) {
	q := r.URL.Query()
	yearLabel := strings.TrimSpace(q.Get("academicYear"))
	periodName := strings.ToUpper(strings.TrimSpace(q.Get("academicSession")))
	if yearLabel == "" || periodName == "" {
		h.Respond.BadRequest(w, r, "academicYear and academicSession are required")
		return models.SessionPeriod{}, "", "", false
	}
	startYear, endYear, ok := parseYears(yearLabel)
	if !ok {
		h.Respond.BadRequest(w, r, "academicYear must look like 2024-2025")
		return models.SessionPeriod{}, "", "", false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	period, err := h.Sessions.GetArchivedPeriod(ctx, startYear, endYear, periodName)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound), errors.Is(err, sessionstore.ErrPeriodNotFound):
		h.Respond.NotFound(w, r, "no archive for this session")
		return models.SessionPeriod{}, "", "", false
	case err != nil:
		h.Respond.ServerError(w, r, "load archive", err, "could not load archive")
		return models.SessionPeriod{}, "", "", false
	}
	return period, yearLabel, periodName, true
}

// sessionDataView is the validated snapshot returned by GetSessionData:
// only mentors with an email make it through, and empty mentee fields
// are replaced with placeholders.
type sessionDataView struct {
	AcademicYear     string                   `json:"academicYear"`
	AcademicSession  string                   `json:"academicSession"`
	ArchivedAt       any                      `json:"archivedAt,omitempty"`
	Mentors          []models.ArchivedMentor  `json:"mentors"`
	GraduatedMentees []models.GraduatedMentee `json:"graduatedMentees"`
}

// GetSessionData handles GET /api/archive/getSessionData.
func (h *Handler) GetSessionData(w http.ResponseWriter, r *http.Request) {
	period, yearLabel, periodName, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}

	mentors := make([]models.ArchivedMentor, 0, len(period.Mentors))
	for _, m := range period.Mentors {
		if m.Email == "" {
			continue
		}
		if m.Phone == "" {
			m.Phone = placeholder
		}
		mentees := make([]models.ArchivedMentee, 0, len(m.Mentees))
		for _, s := range m.Mentees {
			if s.Name == "" {
				s.Name = placeholder
			}
			if s.Email == "" {
				s.Email = placeholder
			}
			mentees = append(mentees, s)
		}
		m.Mentees = mentees
		mentors = append(mentors, m)
	}

	view := sessionDataView{
		AcademicYear:    yearLabel,
		AcademicSession: periodName,
		Mentors:         mentors,
	}
	if period.ArchivedAt != nil {
		view.ArchivedAt = *period.ArchivedAt
	}
	view.GraduatedMentees = period.GraduatedMentees
	if view.GraduatedMentees == nil {
		view.GraduatedMentees = []models.GraduatedMentee{}
	}
	respond.JSON(w, http.StatusOK, view)
}

// DownloadReport handles GET /api/archive/downloadReport. downloadType
// selects the workbook shape: "mentor" (one sheet per mentor),
// "semester" (one sheet per semester) or "default" (combined summary).
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	period, yearLabel, periodName, ok := h.loadPeriod(w, r)
	if !ok {
		return
	}

	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("downloadType")))
	if kind == "" {
		kind = "default"
	}

	var wb *workbook
	var err error
	switch kind {
	case "mentor":
		wb, err = buildMentorWorkbook(period)
	case "semester":
		wb, err = buildSemesterWorkbook(period)
	case "default":
		wb, err = buildSummaryWorkbook(period, yearLabel, periodName)
	default:
		h.Respond.BadRequest(w, r, "downloadType must be mentor, semester or default")
		return
	}
	if err != nil {
		h.Respond.ServerError(w, r, "build report", err, "could not build report")
		return
	}
	defer wb.Close()

	filename := "mentorlink_" + yearLabel + "_" + kind + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := wb.WriteTo(w); err != nil {
		// headers are gone; nothing left to do but log
		h.Log.Error("stream report", zap.Error(err))
	}
}
