package service

import (
	"context"
	"testing"

	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/store"
	"cycletrack/internal/services/profiles/domain"
	"cycletrack/internal/services/profiles/repo"
)

func newSvc() *Svc {
	return New(repo.New(store.NewMemDocs()))
}

func create(t *testing.T, s *Svc, name string) domain.Profile {
	t.Helper()
	p, err := s.Create(context.Background(), domain.CreateInput{
		Name:            name,
		LastPeriodStart: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return p
}

func TestCreateAppliesDefaults(t *testing.T) {
	s := newSvc()
	p := create(t, s, "ada")

	if p.ID == "" {
		t.Fatalf("profile id not assigned")
	}
	if p.CycleLength != domain.DefaultCycleLength || p.PeriodLength != domain.DefaultPeriodLength {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if !p.ShowFertility {
		t.Fatalf("fertility display should default on")
	}
	if p.PregnancyMode {
		t.Fatalf("pregnancy mode should default off")
	}
}

func TestCreateRejectsBadDate(t *testing.T) {
	s := newSvc()
	_, err := s.Create(context.Background(), domain.CreateInput{
		Name:            "ada",
		LastPeriodStart: "01/01/2024",
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidDate) {
		t.Fatalf("want InvalidDate, got %v", err)
	}
}

func TestResolveSingleProfileWithoutRef(t *testing.T) {
	s := newSvc()
	p := create(t, s, "ada")

	got, err := s.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("resolved %s, want %s", got.ID, p.ID)
	}
}

func TestResolveEmptyRefFailsWithMultipleProfiles(t *testing.T) {
	s := newSvc()
	create(t, s, "ada")
	create(t, s, "grace")

	_, err := s.Resolve(context.Background(), "")
	if !perr.IsCode(err, perr.ErrorCodeUnresolvedTarget) {
		t.Fatalf("want UnresolvedTarget, got %v", err)
	}
}

func TestResolveNoProfiles(t *testing.T) {
	s := newSvc()
	_, err := s.Resolve(context.Background(), "")
	if !perr.IsCode(err, perr.ErrorCodeUnresolvedTarget) {
		t.Fatalf("want UnresolvedTarget, got %v", err)
	}
}

func TestResolveUnknownID(t *testing.T) {
	s := newSvc()
	create(t, s, "ada")
	_, err := s.Resolve(context.Background(), "missing-id")
	if !perr.IsCode(err, perr.ErrorCodeUnresolvedTarget) {
		t.Fatalf("want UnresolvedTarget, got %v", err)
	}
}

func TestUpdateLastPeriodStartPersists(t *testing.T) {
	s := newSvc()
	p := create(t, s, "ada")

	moved := dates.MustParse("2024-03-01")
	updated, err := s.UpdateLastPeriodStart(context.Background(), p.ID, moved)
	if err != nil {
		t.Fatalf("anchor: %v", err)
	}
	if !updated.LastPeriodStart.Equal(moved) {
		t.Fatalf("anchor not moved: %+v", updated)
	}

	got, err := s.Resolve(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.LastPeriodStart.Equal(moved) {
		t.Fatalf("anchor change not persisted: %+v", got)
	}

	_, err = s.UpdateLastPeriodStart(context.Background(), "missing-id", moved)
	if !perr.IsCode(err, perr.ErrorCodeUnresolvedTarget) {
		t.Fatalf("want UnresolvedTarget, got %v", err)
	}
}

func TestUpdateOptionsTogglesAndPersists(t *testing.T) {
	s := newSvc()
	p := create(t, s, "ada")

	on := true
	updated, err := s.UpdateOptions(context.Background(), domain.OptionsInput{
		Profile:       p.ID,
		PregnancyMode: &on,
	})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !updated.PregnancyMode {
		t.Fatalf("pregnancy mode not set: %+v", updated)
	}
	if !updated.ShowFertility {
		t.Fatalf("untouched option must keep its value: %+v", updated)
	}

	got, err := s.Resolve(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.PregnancyMode {
		t.Fatalf("option change not persisted")
	}
}
