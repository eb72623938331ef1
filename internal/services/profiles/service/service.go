// Package service contains profile registry workflows
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/services/profiles/domain"
	"cycletrack/internal/services/profiles/repo"
)

// Service defines the profiles service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the profiles service
// the registry document is small, so every operation is a full
// load-mutate-save under one mutex
type Svc struct {
	reg *repo.Registry
	mu  sync.Mutex
}

// New constructs a profiles service
func New(reg *repo.Registry) *Svc {
	if reg == nil {
		panic("profiles.Service requires a non nil Registry")
	}
	return &Svc{reg: reg}
}

// Create registers a new tracked profile
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.Profile, error) {
	start, err := dates.Parse(in.LastPeriodStart)
	if err != nil {
		return domain.Profile{}, perr.WithField(err, "last_period_start")
	}

	p := domain.Profile{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		LastPeriodStart: start,
		CycleLength:     in.CycleLength,
		PeriodLength:    in.PeriodLength,
		ShowFertility:   true,
		CreatedAt:       time.Now().UTC(),
	}
	if p.CycleLength == 0 {
		p.CycleLength = domain.DefaultCycleLength
	}
	if p.PeriodLength == 0 {
		p.PeriodLength = domain.DefaultPeriodLength
	}
	if in.ShowFertility != nil {
		p.ShowFertility = *in.ShowFertility
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.reg.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	ps = append(ps, p)
	if err := s.reg.Save(ctx, ps); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// List returns every profile in creation order
func (s *Svc) List(ctx context.Context) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Load(ctx)
}

// UpdateOptions toggles pregnancy mode and fertility display
func (s *Svc) UpdateOptions(ctx context.Context, in domain.OptionsInput) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.reg.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	i, err := resolveIndex(ps, in.Profile)
	if err != nil {
		return domain.Profile{}, err
	}
	if in.PregnancyMode != nil {
		ps[i].PregnancyMode = *in.PregnancyMode
	}
	if in.ShowFertility != nil {
		ps[i].ShowFertility = *in.ShowFertility
	}
	if err := s.reg.Save(ctx, ps); err != nil {
		return domain.Profile{}, err
	}
	return ps[i], nil
}

// UpdateLastPeriodStart rewrites the profile's baseline anchor
func (s *Svc) UpdateLastPeriodStart(ctx context.Context, ref string, start dates.Date) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.reg.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	i, err := resolveIndex(ps, ref)
	if err != nil {
		return domain.Profile{}, err
	}
	ps[i].LastPeriodStart = start
	if err := s.reg.Save(ctx, ps); err != nil {
		return domain.Profile{}, err
	}
	return ps[i], nil
}

// Resolve maps a profile reference onto a stored profile
// an empty ref is accepted only when exactly one profile exists
func (s *Svc) Resolve(ctx context.Context, ref string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.reg.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	i, err := resolveIndex(ps, ref)
	if err != nil {
		return domain.Profile{}, err
	}
	return ps[i], nil
}

func resolveIndex(ps []domain.Profile, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		switch len(ps) {
		case 1:
			return 0, nil
		case 0:
			return 0, perr.UnresolvedTargetf("no profiles registered")
		default:
			return 0, perr.UnresolvedTargetf("multiple profiles registered, a profile id is required")
		}
	}
	for i, p := range ps {
		if p.ID == ref {
			return i, nil
		}
	}
	return 0, perr.UnresolvedTargetf("unknown profile %q", ref)
}
