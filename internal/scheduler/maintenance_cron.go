package scheduler

import (
	"context"
	"time"

	"github.com/Dias221467/shadowmeet/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// StartMaintenanceCronJobs schedules housekeeping jobs and starts the
// scheduler. The caller stops it on shutdown.
func StartMaintenanceCronJobs(sweeper *jobs.ResetTokenSweeper) (*cron.Cron, error) {
	c := cron.New()

	// Expired password reset tokens
	if _, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := sweeper.Run(ctx); err != nil {
			logrus.WithError(err).Error("Reset token sweep failed")
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
