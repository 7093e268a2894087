// internal/app/features/mentors/handler.go
package mentors

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
	"github.com/mentorlink/mentorlink/internal/app/system/authz"
	"github.com/mentorlink/mentorlink/internal/app/system/normalize"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler serves the admin mentor CRUD endpoints.
type Handler struct {
	Mentors  *mentorstore.Store
	Mentees  *menteestore.Store
	Sessions *sessionstore.Store
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(mentors *mentorstore.Store, mentees *menteestore.Store, sessions *sessionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Mentors:  mentors,
		Mentees:  mentees,
		Sessions: sessions,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

type mentorPayload struct {
	MUJid string   `json:"MUJid"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (p *mentorPayload) normalize() {
	p.MUJid = normalize.MUJid(p.MUJid)
	p.Name = normalize.Name(p.Name)
	p.Email = normalize.Email(p.Email)
	p.Phone = normalize.Phone(p.Phone)
}

func (p *mentorPayload) validate() string {
	switch {
	case p.MUJid == "":
		return "MUJid is required"
	case !normalize.ValidMUJid(p.MUJid):
		return "MUJid may only contain letters and digits"
	case p.Name == "":
		return "name is required"
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return "a valid email is required"
	}
	for _, role := range p.Roles {
		switch role {
		case models.RoleMentor, models.RoleAdmin, models.RoleSuperAdmin:
		default:
			return "unknown role " + role
		}
	}
	return ""
}

// Create handles POST /api/admin/mentor. The new mentor is tagged to
// the current academic period.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p mentorPayload
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

	mentor := models.Mentor{
		MUJid:  p.MUJid,
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		Roles:  p.Roles,
		Active: true,
	}
	if doc, period, err := h.Sessions.GetCurrent(ctx); err == nil {
		mentor.AcademicYear = yearLabel(doc)
		mentor.AcademicSession = period
	}

	created, err := h.Mentors.Create(ctx, mentor)
	switch {
	case errors.Is(err, mentorstore.ErrDuplicateMentor):
		h.Respond.Conflict(w, r, "a mentor with this MUJid or email already exists")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "create mentor", err, "could not create mentor")
		return
	}

	role, _, _, _ := authz.UserCtx(r)
	h.Log.Info("mentor created",
		zap.String("mujid", created.MUJid),
		zap.String("by_role", role))
	respond.JSON(w, http.StatusCreated, created)
}

// Get handles GET /api/admin/mentor/{mujid}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	mentor, err := h.Mentors.GetByMujid(ctx, mujid)
	switch {
	case errors.Is(err, mentorstore.ErrNotFound):
		h.Respond.NotFound(w, r, "mentor not found")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "load mentor", err, "could not load mentor")
		return
	}
	respond.JSON(w, http.StatusOK, mentor)
}

// List handles GET /api/admin/mentor. Supports ?active=true,
// ?year=2024-2025 and ?session=JULY-DECEMBER+2024 filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := bson.M{}
	q := r.URL.Query()
	if q.Get("active") == "true" {
		filter["active"] = true
	}
	if year := strings.TrimSpace(q.Get("year")); year != "" {
		filter["academic_year"] = year
	}
	if session := strings.ToUpper(strings.TrimSpace(q.Get("session"))); session != "" {
		filter["academic_session"] = session
	}

	mentors, err := h.Mentors.List(ctx, filter)
	if err != nil {
		h.Respond.ServerError(w, r, "list mentors", err, "could not list mentors")
		return
	}
	if mentors == nil {
		mentors = []models.Mentor{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"mentors": mentors, "count": len(mentors)})
}

// Update handles PUT /api/admin/mentor/{mujid}. Only provided fields
// change; the MUJid itself is immutable.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	var p mentorPayload
	if !h.Respond.DecodeJSON(w, r, &p) {
		return
	}
	p.normalize()
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		h.Respond.BadRequest(w, r, "a valid email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Mentors.Update(ctx, mujid, models.Mentor{
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Roles: p.Roles,
	})
	switch {
	case errors.Is(err, mentorstore.ErrNotFound):
		h.Respond.NotFound(w, r, "mentor not found")
		return
	case errors.Is(err, mentorstore.ErrDuplicateMentor):
		h.Respond.Conflict(w, r, "another mentor already uses this email")
		return
	case err != nil:
		h.Respond.ServerError(w, r, "update mentor", err, "could not update mentor")
		return
	}

	mentor, err := h.Mentors.GetByMujid(ctx, mujid)
	if err != nil {
		h.Respond.ServerError(w, r, "reload mentor", err, "could not load mentor")
		return
	}
	respond.JSON(w, http.StatusOK, mentor)
}

// Delete handles DELETE /api/admin/mentor/{mujid}. A mentor with
// assigned mentees cannot be removed; reassign them first.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mujid := normalize.MUJid(chi.URLParam(r, "mujid"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	assigned, err := h.Mentees.Count(ctx, bson.M{"mentor_mujid": mujid})
	if err != nil {
		h.Respond.ServerError(w, r, "count mentees", err, "could not check mentor assignments")
		return
	}
	if assigned > 0 {
		h.Respond.Conflict(w, r, "mentor still has assigned mentees")
		return
	}

	n, err := h.Mentors.Delete(ctx, mujid)
	if err != nil {
		h.Respond.ServerError(w, r, "delete mentor", err, "could not delete mentor")
		return
	}
	if n == 0 {
		h.Respond.NotFound(w, r, "mentor not found")
		return
	}

	h.Log.Info("mentor deleted", zap.String("mujid", mujid))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "mentor deleted"})
}

func yearLabel(doc models.AcademicSession) string {
	return strconv.Itoa(doc.StartYear) + "-" + strconv.Itoa(doc.EndYear)
}
