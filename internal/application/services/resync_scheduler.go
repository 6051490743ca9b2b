package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ResyncScheduler runs the resync service on a cron schedule. A run that is
// still going when the next one fires is skipped.
type ResyncScheduler struct {
	resync  *ResyncService
	cron    *cron.Cron
	timeout time.Duration
}

// NewResyncScheduler registers resync on the given standard five-field cron
// expression
func NewResyncScheduler(resync *ResyncService, schedule string, timeout time.Duration) (*ResyncScheduler, error) {
	s := &ResyncScheduler{
		resync:  resync,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid resync schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins firing on schedule
func (s *ResyncScheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		log.Info().Time("next_run", entry.Next).Msg("Mirror resync scheduled")
	}
}

// Stop stops the scheduler and waits for a running resync to finish
func (s *ResyncScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ResyncScheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.resync.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled mirror resync failed")
	}
}
