// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/mentorlink/mentorlink/internal/app/store/emailverify"
	"github.com/mentorlink/mentorlink/internal/app/system/indexes"
	"github.com/mentorlink/mentorlink/internal/app/system/mailer"
	"github.com/mentorlink/mentorlink/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the long-lived
// back-end components (mail queue, background task runner) that the rest
// of the lifecycle receives through DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	smtp := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	queue := mailer.NewQueue(smtp, appCfg.MailQueueSize, appCfg.MailWorkers, logger)

	verifyStore := emailverify.New(db, appCfg.OTPExpiry)
	runner := tasks.NewRunner(logger,
		tasks.VerificationCleanupJob(verifyStore, logger))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Mail:          queue,
		Tasks:         runner,
	}, nil
}

// EnsureSchema creates the collection indexes the stores rely on. The
// unique indexes on MUJids and emails are what turn duplicate inserts
// into clean conflict errors instead of silent data corruption.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("MongoDB indexes ensured")
	return nil
}
