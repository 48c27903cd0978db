package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aniresq/aniresq-api/databases"
)

// notificationRetention is how long read notifications are kept
const notificationRetention = 30 * 24 * time.Hour

// Scheduler runs periodic cleanup jobs
type Scheduler struct {
	cron *cron.Cron
	UDB  databases.UserDatabase
	NDB  databases.NotificationDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(uDB databases.UserDatabase, nDB databases.NotificationDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		UDB:  uDB,
		NDB:  nDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Clear expired password reset codes hourly
	_, err := s.cron.AddFunc("0 * * * *", s.clearExpiredOTPs)
	if err != nil {
		zap.S().Errorw("failed to register OTP cleanup job", "error", err)
	}

	// Prune old read notifications daily at 4 AM UTC
	_, err = s.cron.AddFunc("0 4 * * *", s.pruneReadNotifications)
	if err != nil {
		zap.S().Errorw("failed to register notification cleanup job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Cleanup scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Cleanup scheduler stopped")
}

// clearExpiredOTPs unsets otp fields whose expiry has passed, so stale codes
// can never be verified later
func (s *Scheduler) clearExpiredOTPs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := s.UDB.UpdateMany(ctx,
		bson.M{"otpExpiry": bson.M{"$lt": now}},
		bson.M{"$unset": bson.M{"otp": "", "otpExpiry": ""}},
	)
	if err != nil {
		zap.S().Errorw("failed to clear expired OTPs", "error", err)
		return
	}
	if res.ModifiedCount > 0 {
		zap.S().Infow("cleared expired OTPs", "count", res.ModifiedCount)
	}
}

// pruneReadNotifications deletes read notifications older than the retention
// window
func (s *Scheduler) pruneReadNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-notificationRetention))
	deleted, err := s.NDB.DeleteMany(ctx, bson.M{
		"read":      true,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to prune notifications", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("pruned read notifications", "count", deleted)
	}
}
