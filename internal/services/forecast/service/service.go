// Package service contains forecast workflows
package service

import (
	"context"
	"sync"

	"cycletrack/internal/core/engine"
	"cycletrack/internal/platform/dates"
	"cycletrack/internal/platform/logger"
	"cycletrack/internal/services/forecast/domain"
	historydom "cycletrack/internal/services/history/domain"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Service defines the forecast service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the forecast service
// computed forecasts are cached per profile; a cached entry is fresh
// while its reference day and pregnancy flag still match the profile
type Svc struct {
	history  historydom.ReaderPort
	profiles profilesdom.ServicePort

	// today is swappable for tests
	today func() dates.Date

	mu    sync.RWMutex
	cache map[string]engine.Forecast
}

// New constructs a forecast service
func New(history historydom.ReaderPort, profiles profilesdom.ServicePort) *Svc {
	if history == nil {
		panic("forecast.Service requires a non nil history reader")
	}
	if profiles == nil {
		panic("forecast.Service requires a non nil profiles service")
	}
	return &Svc{
		history:  history,
		profiles: profiles,
		today:    dates.Today,
		cache:    map[string]engine.Forecast{},
	}
}

// Current returns the forecast for the resolved profile
func (s *Svc) Current(ctx context.Context, ref string) (domain.Out, error) {
	p, err := s.profiles.Resolve(ctx, ref)
	if err != nil {
		return domain.Out{}, err
	}

	s.mu.RLock()
	fc, ok := s.cache[p.ID]
	s.mu.RUnlock()
	if ok && fc.Today.Equal(s.today()) && fc.PregnancyMode == p.PregnancyMode {
		return domain.Out{Profile: p.ID, Forecast: fc}, nil
	}

	fc, err = s.compute(ctx, p)
	if err != nil {
		return domain.Out{}, err
	}
	return domain.Out{Profile: p.ID, Forecast: fc}, nil
}

// Refresh recomputes one profile's forecast
func (s *Svc) Refresh(ctx context.Context, ref string) (domain.Out, error) {
	p, err := s.profiles.Resolve(ctx, ref)
	if err != nil {
		return domain.Out{}, err
	}
	fc, err := s.compute(ctx, p)
	if err != nil {
		return domain.Out{}, err
	}
	return domain.Out{Profile: p.ID, Forecast: fc}, nil
}

// RefreshAll recomputes every profile's forecast
// per-profile failures are logged and do not stop the sweep
func (s *Svc) RefreshAll(ctx context.Context) error {
	ps, err := s.profiles.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range ps {
		if _, err := s.compute(ctx, p); err != nil {
			logger.C(ctx).Error().
				Str("profile_id", p.ID).
				Err(err).
				Msg("forecast refresh failed")
		}
	}
	return nil
}

func (s *Svc) compute(ctx context.Context, p profilesdom.Profile) (engine.Forecast, error) {
	periods, events, err := s.history.History(ctx, p.ID)
	if err != nil {
		return engine.Forecast{}, err
	}
	fc := engine.Compute(engine.Inputs{
		Periods: periods,
		Events:  events,
		Baseline: engine.Baseline{
			LastPeriodStart: p.LastPeriodStart,
			CycleLength:     p.CycleLength,
			PeriodLength:    p.PeriodLength,
		},
		PregnancyMode: p.PregnancyMode,
		Today:         s.today(),
	})

	s.mu.Lock()
	s.cache[p.ID] = fc
	s.mu.Unlock()
	return fc, nil
}
