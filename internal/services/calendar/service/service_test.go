package service

import (
	"context"
	"testing"

	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/store"
	"cycletrack/internal/services/calendar/domain"
	fsvc "cycletrack/internal/services/forecast/service"
	hrepo "cycletrack/internal/services/history/repo"
	hsvc "cycletrack/internal/services/history/service"
	profilesdom "cycletrack/internal/services/profiles/domain"
	prepo "cycletrack/internal/services/profiles/repo"
	psvc "cycletrack/internal/services/profiles/service"
)

type fixture struct {
	calendar *Svc
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
	history := hsvc.New(hrepo.New(docs), hsvc.Options{})
	forecast := fsvc.New(history, profiles)
	cal := New(history, forecast, profiles)
	cal.today = func() dates.Date { return d("2024-04-01") }
	return fixture{calendar: cal, history: history, profiles: profiles, profile: p.ID}
}

func seedRegularHistory(t *testing.T, f fixture) {
	t.Helper()
	ctx := context.Background()
	for _, span := range [][2]string{
		{"2024-01-01", "2024-01-05"},
		{"2024-01-29", "2024-02-02"},
		{"2024-02-26", "2024-03-01"},
		{"2024-03-25", "2024-03-29"},
	} {
		if err := f.history.UpsertPeriod(ctx, f.profile, d(span[0]), dp(span[1])); err != nil {
			t.Fatalf("seed period: %v", err)
		}
	}
}

func kinds(entries []domain.Entry) map[string]int {
	out := map[string]int{}
	for _, e := range entries {
		out[e.Kind]++
	}
	return out
}

func TestFeedContainsRecordedAndPredicted(t *testing.T) {
	f := newFixture(t)
	seedRegularHistory(t, f)

	feed, err := f.calendar.Feed(context.Background(), f.profile, dates.Date{}, dates.Date{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	counts := kinds(feed.Entries)
	if counts[domain.KindPeriod] != 4 {
		t.Fatalf("want 4 recorded periods in range, got %d", counts[domain.KindPeriod])
	}
	if counts[domain.KindPredicted] == 0 {
		t.Fatalf("predicted periods missing: %+v", counts)
	}
	if counts[domain.KindFertility] == 0 {
		t.Fatalf("fertility windows missing with display on: %+v", counts)
	}

	for i := 1; i < len(feed.Entries); i++ {
		if feed.Entries[i].Start.Before(feed.Entries[i-1].Start) {
			t.Fatalf("feed not sorted by start: %+v", feed.Entries)
		}
	}
}

func TestFeedMarksNextUpcomingPrediction(t *testing.T) {
	f := newFixture(t)
	seedRegularHistory(t, f)

	feed, err := f.calendar.Feed(context.Background(), f.profile, dates.Date{}, dates.Date{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	var upcoming []domain.Entry
	for _, e := range feed.Entries {
		if e.Upcoming {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) != 1 {
		t.Fatalf("want exactly one upcoming entry, got %d", len(upcoming))
	}
	// first predicted center after 2024-04-01 is 2024-04-22, band is one day
	if !upcoming[0].Start.Equal(d("2024-04-21")) {
		t.Fatalf("upcoming starts %s, want 2024-04-21", upcoming[0].Start)
	}
}

func TestFeedHidesFertilityWhenDisabled(t *testing.T) {
	f := newFixture(t)
	seedRegularHistory(t, f)

	off := false
	if _, err := f.profiles.UpdateOptions(context.Background(), profilesdom.OptionsInput{
		Profile:       f.profile,
		ShowFertility: &off,
	}); err != nil {
		t.Fatalf("options: %v", err)
	}

	feed, err := f.calendar.Feed(context.Background(), f.profile, dates.Date{}, dates.Date{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if kinds(feed.Entries)[domain.KindFertility] != 0 {
		t.Fatalf("fertility entries present with display off")
	}
}

func TestFeedPregnancySuppressesForwardEntries(t *testing.T) {
	f := newFixture(t)
	seedRegularHistory(t, f)

	on := true
	if _, err := f.profiles.UpdateOptions(context.Background(), profilesdom.OptionsInput{
		Profile:       f.profile,
		PregnancyMode: &on,
	}); err != nil {
		t.Fatalf("options: %v", err)
	}

	feed, err := f.calendar.Feed(context.Background(), f.profile, dates.Date{}, dates.Date{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	counts := kinds(feed.Entries)
	if counts[domain.KindPredicted] != 0 || counts[domain.KindFertility] != 0 {
		t.Fatalf("forward-looking entries must vanish in pregnancy mode: %+v", counts)
	}
	if counts[domain.KindPeriod] == 0 {
		t.Fatalf("recorded history must stay visible: %+v", counts)
	}
}

func TestFeedClipsToRequestedRange(t *testing.T) {
	f := newFixture(t)
	seedRegularHistory(t, f)

	feed, err := f.calendar.Feed(context.Background(), f.profile, d("2024-03-20"), d("2024-03-31"))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	for _, e := range feed.Entries {
		if e.End.Before(d("2024-03-20")) || e.Start.After(d("2024-03-31")) {
			t.Fatalf("entry outside range: %+v", e)
		}
	}
	if kinds(feed.Entries)[domain.KindPeriod] != 1 {
		t.Fatalf("only the March period overlaps the range: %+v", feed.Entries)
	}
}

func TestFeedRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.calendar.Feed(context.Background(), f.profile, d("2024-04-01"), d("2024-03-01"))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestCreateEventAllowList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, summary := range []string{"Period", "menstruation", "  PERIOD  "} {
		if _, err := f.calendar.CreateEvent(ctx, domain.CreateEventInput{
			Profile: f.profile,
			Summary: summary,
			Start:   "2024-03-25",
		}); err != nil {
			t.Fatalf("allow-listed title %q rejected: %v", summary, err)
		}
	}

	_, err := f.calendar.CreateEvent(ctx, domain.CreateEventInput{
		Profile: f.profile,
		Summary: "dentist",
		Start:   "2024-03-25",
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument for off-list title, got %v", err)
	}
}

func TestCreateEventRecordsPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.calendar.CreateEvent(ctx, domain.CreateEventInput{
		Profile: f.profile,
		Summary: "period",
		Start:   "2024-03-25",
		End:     "2024-03-29",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	periods, _, err := f.history.History(ctx, f.profile)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(periods) != 1 || !periods[0].Start.Equal(d("2024-03-25")) {
		t.Fatalf("period not recorded: %+v", periods)
	}
	if periods[0].End == nil || !periods[0].End.Equal(d("2024-03-29")) {
		t.Fatalf("end not recorded: %+v", periods[0])
	}
}

func TestCreateEventAdvancesBaselineAnchor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.calendar.CreateEvent(ctx, domain.CreateEventInput{
		Profile: f.profile,
		Summary: "Menstruation",
		Start:   "2024-03-01",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := f.profiles.Resolve(ctx, f.profile)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !p.LastPeriodStart.Equal(d("2024-03-01")) {
		t.Fatalf("baseline anchor = %s, want 2024-03-01", p.LastPeriodStart)
	}
}
