package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCleanupSchedule = "0 3 * * *"
	DefaultRetentionDays   = 30
	cleanupTimeout         = 5 * time.Minute
)

// UploadJobPurger removes bulk upload audit records created before cutoff
type UploadJobPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UploadJobCleaner periodically purges old bulk upload jobs
type UploadJobCleaner struct {
	purger    UploadJobPurger
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *logrus.Logger
	now       func() time.Time
}

func NewUploadJobCleaner(purger UploadJobPurger, retentionDays int, schedule string, logger *logrus.Logger) *UploadJobCleaner {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}
	return &UploadJobCleaner{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the cleanup on the cron schedule and starts the scheduler.
// An invalid schedule is returned as an error and nothing is started.
func (c *UploadJobCleaner) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, c.run); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", c.schedule, err)
	}
	c.cron.Start()
	c.logger.WithFields(logrus.Fields{
		"schedule":       c.schedule,
		"retention_days": int(c.retention.Hours() / 24),
	}).Info("Upload job cleaner started")
	return nil
}

// Stop halts the scheduler and waits for a running cleanup to finish
func (c *UploadJobCleaner) Stop(ctx context.Context) {
	select {
	case <-c.cron.Stop().Done():
	case <-ctx.Done():
		c.logger.Warn("Upload job cleaner did not stop before deadline")
	}
}

func (c *UploadJobCleaner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if _, err := c.RunOnce(ctx); err != nil {
		c.logger.WithError(err).Error("Failed to purge old upload jobs")
	}
}

// RunOnce purges jobs older than the retention window and returns how many were removed
func (c *UploadJobCleaner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := c.now().UTC().Add(-c.retention)
	deleted, err := c.purger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		c.logger.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Purged old upload jobs")
	}
	return deleted, nil
}
