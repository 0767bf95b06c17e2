// Package jobs runs periodic maintenance inside the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/bizsite/config"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// ResetPurger clears reset state that expired longer than grace ago.
type ResetPurger interface {
	PurgeStale(ctx context.Context, grace time.Duration) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers every job. It does not start them.
func NewScheduler(cfg config.JobsConfig, purger ResetPurger) (*Scheduler, error) {
	c := cron.New()

	if cfg.ResetPurgeSchedule != "" {
		_, err := c.AddFunc(cfg.ResetPurgeSchedule, func() {
			PurgeResetTokens(context.Background(), purger, cfg.ResetPurgeGrace)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule reset token purge: %w", err)
		}
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// PurgeResetTokens is one run of the purge job.
func PurgeResetTokens(ctx context.Context, purger ResetPurger, grace time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	ctx = ctxutil.Tag(ctx, "jobs", "PurgeResetTokens")

	start := time.Now()
	n, err := purger.PurgeStale(ctx, grace)
	if err != nil {
		logger.ErrorWithContext(ctx, "Reset token purge failed").
			Err(err).
			Log()
		return
	}

	logger.InfoWithContext(ctx, "Reset token purge finished").
		Int64("cleaned_count", n).
		Duration(time.Since(start)).
		Log()
}
