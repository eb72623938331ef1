package service

import (
	"context"
	"testing"

	"cycletrack/internal/platform/dates"
	"cycletrack/internal/platform/store"
	historydom "cycletrack/internal/services/history/domain"
	hrepo "cycletrack/internal/services/history/repo"
	hsvc "cycletrack/internal/services/history/service"
	profilesdom "cycletrack/internal/services/profiles/domain"
	prepo "cycletrack/internal/services/profiles/repo"
	psvc "cycletrack/internal/services/profiles/service"
)

type fixture struct {
	forecast *Svc
	history  *hsvc.Svc
	profiles *psvc.Svc
	profile  string
}

func d(s string) dates.Date { return dates.MustParse(s) }

func dp(s string) *dates.Date {
	v := dates.MustParse(s)
	return &v
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	docs := store.NewMemDocs()
	profiles := psvc.New(prepo.New(docs))
	p, err := profiles.Create(context.Background(), profilesdom.CreateInput{
		Name:            "ada",
		LastPeriodStart: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	var fc *Svc
	history := hsvc.New(hrepo.New(docs), hsvc.Options{
		Refresh: func(ctx context.Context, profileID string) {
			if fc != nil {
				_, _ = fc.Refresh(ctx, profileID)
			}
		},
	})
	fc = New(history, profiles)
	fc.today = func() dates.Date { return d("2024-01-15") }

	return fixture{forecast: fc, history: history, profiles: profiles, profile: p.ID}
}

func TestCurrentEmptyHistoryUsesBaseline(t *testing.T) {
	f := newFixture(t)

	out, err := f.forecast.Current(context.Background(), f.profile)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if out.Profile != f.profile {
		t.Fatalf("profile = %s, want %s", out.Profile, f.profile)
	}
	if out.CycleLength != 28 || out.PeriodLength != 5 {
		t.Fatalf("baseline lengths not used: %+v", out)
	}
	if out.NextPeriodStart == nil || !out.NextPeriodStart.Equal(d("2024-01-29")) {
		t.Fatalf("next period = %v, want 2024-01-29", out.NextPeriodStart)
	}
}

func TestMutationRefreshesCachedForecast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.forecast.Current(ctx, f.profile)
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	// a fresh anchor moves the next predicted start
	if err := f.history.UpsertPeriod(ctx, f.profile, d("2024-01-10"), dp("2024-01-14")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	after, err := f.forecast.Current(ctx, f.profile)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if after.NextPeriodStart == nil || after.NextPeriodStart.Equal(*before.NextPeriodStart) {
		t.Fatalf("forecast not refreshed after mutation: before %v after %v",
			before.NextPeriodStart, after.NextPeriodStart)
	}
	if !after.NextPeriodStart.Equal(d("2024-02-07")) {
		t.Fatalf("next period = %v, want 2024-02-07", after.NextPeriodStart)
	}
}

func TestCurrentRecomputesWhenPregnancyToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.forecast.Current(ctx, f.profile)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if out.NextPeriodStart == nil {
		t.Fatalf("expected a forecast before pregnancy mode")
	}

	on := true
	if _, err := f.profiles.UpdateOptions(ctx, profilesdom.OptionsInput{
		Profile:       f.profile,
		PregnancyMode: &on,
	}); err != nil {
		t.Fatalf("options: %v", err)
	}

	out, err = f.forecast.Current(ctx, f.profile)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if out.NextPeriodStart != nil {
		t.Fatalf("cached pre-pregnancy forecast served: %+v", out)
	}
	if out.DayOfCycle == 0 {
		t.Fatalf("cycle position must survive pregnancy mode")
	}
}

func TestRefreshAllCoversEveryProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.profiles.Create(ctx, profilesdom.CreateInput{
		Name:            "grace",
		LastPeriodStart: "2024-01-05",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.forecast.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	f.forecast.mu.RLock()
	cached := len(f.forecast.cache)
	f.forecast.mu.RUnlock()
	if cached != 2 {
		t.Fatalf("want 2 cached forecasts, got %d", cached)
	}
}

var _ historydom.ReaderPort = (*hsvc.Svc)(nil)
