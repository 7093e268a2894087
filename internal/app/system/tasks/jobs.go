// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/mentorlink/mentorlink/internal/app/store/emailverify"
	"go.uber.org/zap"
)

// VerificationCleanupJob removes expired login codes. This is a backup
// for when MongoDB's TTL index cleanup is delayed.
func VerificationCleanupJob(verifyStore *emailverify.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "verification-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := verifyStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired login codes", zap.Int64("count", count))
			}
			return nil
		},
	}
}
