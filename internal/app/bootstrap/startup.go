// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strconv"

	"github.com/dalemusser/waffle/config"
	sessionstore "github.com/mentorlink/mentorlink/internal/app/store/academicsessions"
	mentorstore "github.com/mentorlink/mentorlink/internal/app/store/mentors"
	"github.com/mentorlink/mentorlink/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It starts the background workers and makes sure the configured
// superadmin account exists, so a fresh deployment can sign in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.Mail.Start()
	deps.Tasks.Start()

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, appCfg.SuperAdminMUJid, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureSuperAdmin creates the superadmin account, or promotes an
// existing mentor with the same email. Runs on every startup and is
// idempotent.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email, mujid string, logger *zap.Logger) error {
	mentors := mentorstore.New(deps.MongoDatabase)

	existing, err := mentors.GetByEmail(ctx, email)
	if err == nil {
		if existing.HasRole(models.RoleSuperAdmin) && existing.Active {
			return nil
		}
		update := models.Mentor{Roles: append(existing.Roles, models.RoleSuperAdmin)}
		if existing.HasRole(models.RoleSuperAdmin) {
			update.Roles = existing.Roles
		}
		if err := mentors.Update(ctx, existing.MUJid, update); err != nil {
			return err
		}
		if err := mentors.SetActive(ctx, existing.MUJid, true); err != nil {
			return err
		}
		logger.Info("promoted existing account to superadmin",
			zap.String("mujid", existing.MUJid))
		return nil
	}
	if !errors.Is(err, mentorstore.ErrNotFound) {
		return err
	}

	m := models.Mentor{
		MUJid:  mujid,
		Name:   "Super Admin",
		Email:  email,
		Roles:  []string{models.RoleMentor, models.RoleAdmin, models.RoleSuperAdmin},
		Active: true,
	}
	// Tag the account to the live period when one exists; a brand-new
	// deployment has no sessions yet and that is fine.
	sessions := sessionstore.New(deps.MongoDatabase)
	if doc, period, err := sessions.GetCurrent(ctx); err == nil {
		m.AcademicYear = yearLabel(doc.StartYear, doc.EndYear)
		m.AcademicSession = period
	}

	created, err := mentors.Create(ctx, m)
	if err != nil {
		return err
	}
	logger.Info("created superadmin account", zap.String("mujid", created.MUJid))
	return nil
}

func yearLabel(startYear, endYear int) string {
	return strconv.Itoa(startYear) + "-" + strconv.Itoa(endYear)
}
