// internal/app/features/mentees/handler.go
package mentees

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/csvutil"
	"github.com/mentorlink/mentorlink/internal/app/system/htmlsanitize"
	"github.com/mentorlink/mentorlink/internal/app/system/normalize"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler serves the admin mentee CRUD and bulk-upload endpoints.
type Handler struct {
	Mentees  *menteestore.Store
	Mentors  *mentorstore.Store
	Sessions *sessionstore.Store
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(mentees *menteestore.Store, mentors *mentorstore.Store, sessions *sessionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Mentees:  mentees,
		Mentors:  mentors,
		Sessions: sessions,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

type menteePayload struct {
	MUJid         string           `json:"MUJid"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone,omitempty"`
	Semester      int              `json:"semester"`
	MentorMujid   string           `json:"mentorMujid"`
	Guardian      *models.Guardian `json:"guardian,omitempty"`
	MentorRemarks string           `json:"mentorRemarks,omitempty"`
}

func (p *menteePayload) normalize() {
	p.MUJid = normalize.MUJid(p.MUJid)
	p.Name = normalize.Name(p.Name)
	p.Email = normalize.Email(p.Email)
	p.Phone = normalize.Phone(p.Phone)
	p.MentorMujid = normalize.MUJid(p.MentorMujid)
	p.MentorRemarks = strings.TrimSpace(htmlsanitize.Sanitize(p.MentorRemarks))
	if p.Guardian != nil {
		p.Guardian.Email = normalize.Email(p.Guardian.Email)
		p.Guardian.Phone = normalize.Phone(p.Guardian.Phone)
	}
}

func (p *menteePayload) validate() string {
	switch {
	case p.MUJid == "":
		return "MUJid is required"
	case !normalize.ValidMUJid(p.MUJid):
		return "MUJid may only contain letters and digits"
	case p.Name == "":
		return "name is required"
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return "a valid email is required"
	case p.Semester < models.MinSemester || p.Semester > models.MaxSemester:
		return "semester must be between 1 and 8"
	case p.MentorMujid == "":
		return "mentorMujid is required"
	case !normalize.ValidMUJid(p.MentorMujid):
		return "mentorMujid may only contain letters and digits"
	}
	return ""
}

// Create handles POST /api/admin/mentee.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p menteePayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	p.normalize()
	if msg := p.validate(); msg != "" {
		h.Respond.BadRequest(w, r, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Mentors.GetByMujid(ctx, p.MentorMujid); err != nil {
		if errors.Is(err, mentorstore.ErrNotFound) {
			h.Respond.BadRequest(w, r, "mentor "+p.MentorMujid+" does not exist")
			return
		}
		h.Respond.ServerError(w, r, "check mentor", err, "could not verify mentor")
		return
	}

	mentee := models.Mentee{
		MUJid:         p.MUJid,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Semester:      p.Semester,
		MentorMujid:   p.MentorMujid,
		MentorRemarks: p.MentorRemarks,
	}
	if p.Guardian != nil {
		mentee.Guardian = *p.Guardian
	}
	if doc, period, err := h.Sessions.GetCurrent(ctx); err == nil {
		mentee.AcademicYear = strconv.Itoa(doc.StartYear) + "-" + strconv.Itoa(doc.EndYear)
		mentee.AcademicSession = period
	}

	created, err := h.Mentees.Create(ctx, mentee)
	switch {
	case errors.Is(err, menteestore.ErrDuplicateMentee):
		h.Respond.Conflict(w, r, "a mentee with this MUJid or email already exists")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "create mentee", err, "could not create mentee")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// Get handles GET /api/admin/mentee/{mujid}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	mentee, err := h.Mentees.GetByMujid(ctx, mujid)
	switch {
	case errors.Is(err, menteestore.ErrNotFound):
		h.Respond.NotFound(w, r, "mentee not found")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "load mentee", err, "could not load mentee")
		return
	}
	respond.JSON(w, http.StatusOK, mentee)
}

// List handles GET /api/admin/mentee. Supports ?mentor=MUJID and
// ?semester=N filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := bson.M{}
	if mentor := normalize.MUJid(r.URL.Query().Get("mentor")); mentor != "" {
		filter["mentor_mujid"] = mentor
	}
	if semRaw := r.URL.Query().Get("semester"); semRaw != "" {
		sem, err := strconv.Atoi(semRaw)
		if err != nil || sem < models.MinSemester || sem > models.MaxSemester {
			h.Respond.BadRequest(w, r, "semester must be between 1 and 8")
			return
		}
		filter["semester"] = sem
	}

	mentees, err := h.Mentees.List(ctx, filter)
	if err != nil {
		h.Respond.ServerError(w, r, "list mentees", err, "could not list mentees")
		return
	}
	if mentees == nil {
		mentees = []models.Mentee{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"mentees": mentees, "count": len(mentees)})
}

// Update handles PUT /api/admin/mentee/{mujid}. Only provided fields
// change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	var p menteePayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	p.normalize()
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		h.Respond.BadRequest(w, r, "a valid email is required")
		return
	}
	if p.Semester != 0 && (p.Semester < models.MinSemester || p.Semester > models.MaxSemester) {
		h.Respond.BadRequest(w, r, "semester must be between 1 and 8")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if p.MentorMujid != "" {
		if _, err := h.Mentors.GetByMujid(ctx, p.MentorMujid); err != nil {
			if errors.Is(err, mentorstore.ErrNotFound) {
				h.Respond.BadRequest(w, r, "mentor "+p.MentorMujid+" does not exist")
				return
			}
			h.Respond.ServerError(w, r, "check mentor", err, "could not verify mentor")
			return
		}
	}

	mut := models.Mentee{
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Semester:      p.Semester,
		MentorMujid:   p.MentorMujid,
		MentorRemarks: p.MentorRemarks,
	}
	if p.Guardian != nil {
		mut.Guardian = *p.Guardian
	}

	err := h.Mentees.Update(ctx, mujid, mut)
	switch {
	case errors.Is(err, menteestore.ErrNotFound):
		h.Respond.NotFound(w, r, "mentee not found")
		return
	case errors.Is(err, menteestore.ErrDuplicateMentee):
		h.Respond.Conflict(w, r, "another mentee already uses this email")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "update mentee", err, "could not update mentee")
		return
	}

	mentee, err := h.Mentees.GetByMujid(ctx, mujid)
	if err != nil {
		h.Respond.ServerError(w, r, "reload mentee", err, "could not load mentee")
		return
	}
	respond.JSON(w, http.StatusOK, mentee)
}

// Delete handles DELETE /api/admin/mentee/{mujid}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Mentees.Delete(ctx, mujid)
	if err != nil {
		h.Respond.ServerError(w, r, "delete mentee", err, "could not delete mentee")
		return
	}
	if n == 0 {
		h.Respond.NotFound(w, r, "mentee not found")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "mentee deleted"})
}

// Upload handles POST /api/admin/mentee/upload_csv: a multipart form with a
// "file" CSV field. The whole file is validated before any insert; a
// file with bad rows is rejected outright so a partial upload never
// happens silently.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		h.Respond.BadRequest(w, r, "upload too large or malformed")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.Respond.BadRequest(w, r, "missing file field")
		return
	}
	defer file.Close()

	rows, rowErrs, err := csvutil.PreScanMenteesCSV(file)
	if err != nil {
		h.Respond.BadRequest(w, r, err.Error())
		return
	}
	if len(rowErrs) > 0 {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "csv contains invalid rows",
			"rows":   len(rowErrs),
			"errors": rowErrs,
		})
		return
	}
	if len(rows) == 0 {
		h.Respond.BadRequest(w, r, "csv contains no data rows")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	// every referenced mentor must exist before anything is inserted
	mentorSet := map[string]bool{}
	for _, row := range rows {
		mentorSet[row.MentorMujid] = true
	}
	var missing []string
	for mujid := range mentorSet {
		if _, err := h.Mentors.GetByMujid(ctx, mujid); errors.Is(err, mentorstore.ErrNotFound) {
			missing = append(missing, mujid)
		} else if err != nil {
			h.Respond.ServerError(w, r, "check mentors", err, "could not verify mentors")
			return
		}
	}
	if len(missing) > 0 {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":   "csv references unknown mentors",
			"mentors": missing,
		})
		return
	}

	var year, period string
	if doc, cur, err := h.Sessions.GetCurrent(ctx); err == nil {
		year = strconv.Itoa(doc.StartYear) + "-" + strconv.Itoa(doc.EndYear)
		period = cur
	}

	mentees := make([]models.Mentee, 0, len(rows))
	for _, row := range rows {
		mentees = append(mentees, models.Mentee{
			MUJid:           row.MUJid,
			Name:            row.Name,
			Email:           row.Email,
			Phone:           row.Phone,
			Semester:        row.Semester,
			MentorMujid:     row.MentorMujid,
			AcademicYear:    year,
			AcademicSession: period,
		})
	}

	inserted, err := h.Mentees.CreateMany(ctx, mentees)
	switch {
	case errors.Is(err, menteestore.ErrDuplicateMentee):
		respond.JSON(w, http.StatusConflict, map[string]any{
			"error":    "some mentees already exist",
			"inserted": inserted,
			"skipped":  len(mentees) - inserted,
		})
		return
	case err != nil:
		h.Respond.ServerError(w, r, "insert mentees", err, "could not insert mentees")
		return
	}

	h.Log.Info("mentee csv upload", zap.Int("inserted", inserted))
	respond.JSON(w, http.StatusCreated, map[string]any{"inserted": inserted})
}
