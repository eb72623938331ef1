package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"cycletrack/internal/platform/logger"
)

// Refresher reruns RefreshAll on a fixed interval so forecasts roll
// over at day boundaries even without mutations
type Refresher struct {
	svc   Service
	every time.Duration
}

// NewRefresher constructs a Refresher; every must be positive
func NewRefresher(svc Service, every time.Duration) *Refresher {
	if every <= 0 {
		every = 24 * time.Hour
	}
	return &Refresher{svc: svc, every: every}
}

// Run starts the scheduler and blocks until ctx is done
func (r *Refresher) Run(ctx context.Context) error {
	log := logger.Named("forecast.refresher")

	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(r.every).Do(func() {
		if err := r.svc.RefreshAll(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled forecast refresh failed")
		}
	})
	if err != nil {
		return err
	}

	log.Info().Dur("every", r.every).Msg("forecast refresher started")
	scheduler.StartAsync()

	<-ctx.Done()
	scheduler.Stop()
	log.Info().Msg("forecast refresher stopped")
	return nil
}
