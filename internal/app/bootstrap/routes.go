// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	academicsessionfeature "github.com/mentorlink/mentorlink/internal/app/features/academicsession"
	archivefeature "github.com/mentorlink/mentorlink/internal/app/features/archive"
	dashboardfeature "github.com/mentorlink/mentorlink/internal/app/features/dashboard"
	healthfeature "github.com/mentorlink/mentorlink/internal/app/features/health"
	loginfeature "github.com/mentorlink/mentorlink/internal/app/features/login"
	meetingsfeature "github.com/mentorlink/mentorlink/internal/app/features/meetings"
	menteesfeature "github.com/mentorlink/mentorlink/internal/app/features/mentees"
	mentorsfeature "github.com/mentorlink/mentorlink/internal/app/features/mentors"
	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	"github.com/mentorlink/mentorlink/internal/app/store/emailverify"
	meetingstore "github.com/mentorlink/mentorlink/internal/app/store/meetings"
	menteestore "github.com/mentorlink/mentorlink/internal/app/store/mentees"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/app/system/auth"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// MentorLink is a JSON API. Authentication state rides in a signed
// session cookie; the admin surface sits under /api/admin, the mentor
// surface under /api/mentor, and read-only archive data under
// /api/archive.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	mentors := mentorstore.New(deps.MongoDatabase)
	mentees := menteestore.New(deps.MongoDatabase)
	meetings := meetingstore.New(deps.MongoDatabase)
	sessions := sessionstore.New(deps.MongoDatabase)
	verify := emailverify.New(deps.MongoDatabase, appCfg.OTPExpiry)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user into context when
	// a valid cookie is present. Handlers read it via auth.CurrentUser.
	r.Use(authMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: OTP request/verify plus logout
	loginHandler := loginfeature.NewHandler(authMgr, mentors, mentees, verify, deps.Mail, appCfg.SiteName, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	// Admin surface: mentor/mentee CRUD and session lifecycle
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))

		mentorHandler := mentorsfeature.NewHandler(mentors, mentees, sessions, logger)
		r.Mount("/mentor", mentorsfeature.Routes(mentorHandler))

		menteeHandler := menteesfeature.NewHandler(mentees, mentors, sessions, logger)
		r.Mount("/mentee", menteesfeature.Routes(menteeHandler))

		sessionHandler := academicsessionfeature.NewHandler(deps.MongoClient, sessions, mentors, mentees, meetings, logger)
		r.Mount("/academicSession", academicsessionfeature.Routes(sessionHandler))
	})

	// Mentor surface: meeting scheduling and reports. The handlers
	// check the mentor role themselves so they can scope data to the
	// signed-in mentor.
	r.Route("/api/mentor", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		meetingHandler := meetingsfeature.NewHandler(meetings, mentees, sessions, deps.Mail, appCfg.SiteName, logger)
		r.Mount("/meetings", meetingsfeature.Routes(meetingHandler))
	})

	// Archived session data and downloadable reports
	r.Route("/api/archive", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))

		archiveHandler := archivefeature.NewHandler(sessions, logger)
		r.Mount("/", archivefeature.Routes(archiveHandler))
	})

	// Role-aware dashboard for any signed-in user
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		dashboardHandler := dashboardfeature.NewHandler(mentors, mentees, meetings, sessions, logger)
		r.Mount("/", dashboardfeature.Routes(dashboardHandler))
	})

	return r, nil
}
