// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mentorlink/mentorlink/internal/app/store/emailverify"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/auth"
	"github.com/mentorlink/mentorlink/internal/app/system/mailer"
	"github.com/mentorlink/mentorlink/internal/app/system/normalize"
	"github.com/mentorlink/mentorlink/internal/app/system/ratelimit"
	"github.com/mentorlink/mentorlink/internal/app/system/respond"
	"github.com/mentorlink/mentorlink/internal/app/system/timeouts"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the email/OTP login flow. A login code is issued to
// any address present in the mentors or mentees collection; unknown
// addresses get the same response so the endpoint cannot be used to
// enumerate accounts.
type Handler struct {
	Auth     *auth.Manager
	Mentors  *mentorstore.Store
	Mentees  *menteestore.Store
	Verify   *emailverify.Store
	Mail     *mailer.Queue
	Limiter  *ratelimit.OTPLimiter
	SiteName string
	Log      *zap.Logger
	Respond  *respond.Logger
}

func NewHandler(
	authMgr *auth.Manager,
	mentors *mentorstore.Store,
	mentees *menteestore.Store,
	verify *emailverify.Store,
	mail *mailer.Queue,
	siteName string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Auth:     authMgr,
		Mentors:  mentors,
		Mentees:  mentees,
		Verify:   verify,
		Mail:     mail,
		Limiter:  ratelimit.NewOTPLimiter(),
		SiteName: siteName,
		Log:      logger,
		Respond:  respond.NewLogger(logger),
	}
}

type otpRequest struct {
	Email  string `json:"email"`
	Resend bool   `json:"resend,omitempty"`
}

// account resolves an email to a signed-in identity. Mentors win over
// mentees when an address somehow appears in both collections.
type account struct {
	MUJid string
	Name  string
	Email string
	Role  string
}

func (h *Handler) lookupAccount(r *http.Request, email string) (account, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if mentor, err := h.Mentors.GetByEmail(ctx, email); err == nil {
		if !mentor.Active {
			return account{}, false
		}
		return account{
			MUJid: mentor.MUJid,
			Name:  mentor.Name,
			Email: mentor.Email,
			Role:  mentor.SessionRole(),
		}, true
	}
	if mentee, err := h.Mentees.GetByEmail(ctx, email); err == nil {
		return account{
			MUJid: mentee.MUJid,
			Name:  mentee.Name,
			Email: mentee.Email,
			Role:  models.RoleMentee,
		}, true
	}
	return account{}, false
}

// RequestOTP handles POST /api/auth/otp. It always answers 200 for a
// well-formed email to avoid account enumeration; codes are only issued
// (and mailed) for known accounts.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !h.Respond.DecodeJSON(w, r, &req) {
		return
	}

	email := normalize.Email(req.Email)
	if email == "" {
		h.Respond.BadRequest(w, r, "email is required")
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("otp request rate limited",
			zap.String("email", email),
			zap.String("reason", reason))
		respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "too many requests, try again later"})
		return
	}

	acct, known := h.lookupAccount(r, email)
	if known {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		code, err := h.Verify.Create(ctx, email, req.Resend)
		switch {
		case errors.Is(err, emailverify.ErrTooManyResends):
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "too many resend requests"})
			return
		case err != nil:
			h.Respond.ServerError(w, r, "issue login code", err, "could not issue login code")
			return
		}

		msg := mailer.BuildOTPEmail(mailer.OTPEmailData{
			SiteName:  h.SiteName,
			Code:      code,
			ExpiresIn: fmt.Sprintf("%d minutes", int(h.Verify.Expiry().Minutes())),
		})
		msg.To = acct.Email
		if err := h.Mail.Enqueue(msg); err != nil {
			// The code is already stored; the user can ask for a resend.
			h.Log.Error("enqueue otp email failed", zap.String("email", email), zap.Error(err))
		}
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"message": "if the address is registered, a login code has been sent",
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	MUJid string `json:"MUJid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// VerifyOTP handles POST /api/auth/verify. On success it writes the
// session cookie and returns the signed-in identity.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.Respond.DecodeJSON(w, r, &req) {
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Code == "" {
		h.Respond.BadRequest(w, r, "email and code are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Verify.VerifyCode(ctx, email, req.Code)
	switch {
	case errors.Is(err, emailverify.ErrNotFound):
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "code expired or not requested"})
		return
	case errors.Is(err, emailverify.ErrInvalidCode):
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "invalid code"})
		return
	case errors.Is(err, emailverify.ErrTooManyAttempts):
		respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "too many attempts, request a new code"})
		return
	case err != nil:
		h.Respond.ServerError(w, r, "verify login code", err, "could not verify code")
		return
	}

	acct, known := h.lookupAccount(r, email)
	if !known {
		// Account removed between code issue and verify.
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "account not found"})
		return
	}

	if err := h.Auth.SignIn(w, r, auth.SessionUser{
		MUJid: acct.MUJid,
		Name:  acct.Name,
		Email: acct.Email,
		Role:  acct.Role,
	}); err != nil {
		h.Respond.ServerError(w, r, "write session", err, "could not sign in")
		return
	}

	h.Limiter.ResetEmail(email)
	h.Log.Info("user signed in",
		zap.String("mujid", acct.MUJid),
		zap.String("role", acct.Role))

	respond.JSON(w, http.StatusOK, verifyResponse{
		MUJid: acct.MUJid,
		Name:  acct.Name,
		Email: acct.Email,
		Role:  acct.Role,
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(w, r); err != nil {
		h.Respond.ServerError(w, r, "clear session", err, "could not sign out")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
