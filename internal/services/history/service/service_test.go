package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/store"
	"cycletrack/internal/services/history/domain"
	"cycletrack/internal/services/history/repo"
)

const profile = "p1"

func newSvc(t *testing.T) *Svc {
	t.Helper()
	return New(repo.New(store.NewMemDocs()), Options{})
}

func d(s string) dates.Date { return dates.MustParse(s) }

func dp(s string) *dates.Date {
	v := dates.MustParse(s)
	return &v
}

func event(day string, menstruating bool, flow cycle.Flow, at time.Time, symptoms ...string) cycle.EventEntry {
	return cycle.EventEntry{
		Day:          d(day),
		Menstruating: menstruating,
		Flow:         flow,
		Symptoms:     symptoms,
		CreatedAt:    at,
	}
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
}

func TestUpsertPeriodNeverErasesEnd(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.UpsertPeriod(ctx, profile, d("2024-03-01"), dp("2024-03-05")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// a later upsert without an end must keep the recorded one
	if err := s.UpsertPeriod(ctx, profile, d("2024-03-01"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	periods, _, err := s.History(ctx, profile)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("want 1 period, got %d", len(periods))
	}
	if periods[0].End == nil || !periods[0].End.Equal(d("2024-03-05")) {
		t.Fatalf("end was erased: %+v", periods[0])
	}
}

func TestUpsertPeriodReplacesEnd(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.UpsertPeriod(ctx, profile, d("2024-03-01"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertPeriod(ctx, profile, d("2024-03-01"), dp("2024-03-06")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	periods, _, _ := s.History(ctx, profile)
	if periods[0].End == nil || !periods[0].End.Equal(d("2024-03-06")) {
		t.Fatalf("end not updated: %+v", periods[0])
	}
}

func TestUpsertPeriodRejectsEndBeforeStart(t *testing.T) {
	s := newSvc(t)
	err := s.UpsertPeriod(context.Background(), profile, d("2024-03-05"), dp("2024-03-01"))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestUpsertPeriodKeepsSortedStarts(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	for _, start := range []string{"2024-03-01", "2024-01-01", "2024-02-01"} {
		if err := s.UpsertPeriod(ctx, profile, d(start), nil); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	periods, _, _ := s.History(ctx, profile)
	for i := 1; i < len(periods); i++ {
		if !periods[i-1].Start.Before(periods[i].Start) {
			t.Fatalf("periods out of order: %+v", periods)
		}
	}
}

func TestLogEventOrdersByDayThenCreatedAt(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.LogEvent(ctx, profile, event("2024-03-02", true, cycle.FlowLight, at(9))); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := s.LogEvent(ctx, profile, event("2024-03-01", true, cycle.FlowHeavy, at(10))); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := s.LogEvent(ctx, profile, event("2024-03-01", false, cycle.FlowNone, at(8))); err != nil {
		t.Fatalf("log: %v", err)
	}

	_, events, _ := s.History(ctx, profile)
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	if !events[0].Day.Equal(d("2024-03-01")) || events[0].Menstruating {
		t.Fatalf("earliest created_at on day must come first: %+v", events)
	}
	if !events[2].Day.Equal(d("2024-03-02")) {
		t.Fatalf("later day must come last: %+v", events)
	}
}

func TestLogEventRejectsUnknownFlow(t *testing.T) {
	s := newSvc(t)
	e := event("2024-03-01", true, cycle.Flow("gusher"), at(9))
	if err := s.LogEvent(context.Background(), profile, e); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestConcurrentLogEventsLoseNothing(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			e := event("2024-03-01", true, cycle.FlowMedium, at(0).Add(time.Duration(i)*time.Minute))
			if err := s.LogEvent(ctx, profile, e); err != nil {
				t.Errorf("log: %v", err)
			}
		}(i)
	}
	wg.Wait()

	_, events, err := s.History(ctx, profile)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != writers {
		t.Fatalf("lost updates: want %d events, got %d", writers, len(events))
	}
}

func TestImportMergeKeepsExistingRecords(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.UpsertPeriod(ctx, profile, d("2024-01-01"), dp("2024-01-05")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	existing := event("2024-01-02", true, cycle.FlowHeavy, at(9), "cramps")
	if err := s.LogEvent(ctx, profile, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := s.Import(ctx, profile,
		[]cycle.PeriodEntry{{Start: d("2024-02-01")}},
		[]cycle.EventEntry{event("2024-02-02", true, cycle.FlowLight, at(10))},
		domain.ImportMerge,
	)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	periods, events, _ := s.History(ctx, profile)
	if len(periods) != 2 {
		t.Fatalf("pre-existing period lost: %+v", periods)
	}
	found := false
	for _, e := range events {
		if e.Identity() == existing.Identity() {
			found = true
		}
	}
	if !found {
		t.Fatalf("pre-existing event identity lost: %+v", events)
	}
}

func TestImportMergeIsIdempotent(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	in := []cycle.PeriodEntry{{Start: d("2024-03-01"), End: dp("2024-03-05")}}
	for i := 0; i < 2; i++ {
		if err := s.Import(ctx, profile, in, nil, domain.ImportMerge); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}

	periods, _, _ := s.History(ctx, profile)
	if len(periods) != 1 {
		t.Fatalf("want exactly 1 period, got %+v", periods)
	}
	if periods[0].End == nil || !periods[0].End.Equal(d("2024-03-05")) {
		t.Fatalf("end lost on re-import: %+v", periods[0])
	}
}

func TestImportMergeKeepsEarliestCreatedAt(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.LogEvent(ctx, profile, event("2024-03-01", true, cycle.FlowMedium, at(12))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// same identity, earlier created_at
	err := s.Import(ctx, profile, nil,
		[]cycle.EventEntry{event("2024-03-01", true, cycle.FlowMedium, at(7))},
		domain.ImportMerge,
	)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	_, events, _ := s.History(ctx, profile)
	if len(events) != 1 {
		t.Fatalf("identity not collapsed: %+v", events)
	}
	if !events[0].CreatedAt.Equal(at(7)) {
		t.Fatalf("earliest created_at not kept: %v", events[0].CreatedAt)
	}
}

func TestImportReplaceDiscardsState(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.UpsertPeriod(ctx, profile, d("2024-01-01"), nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := s.Import(ctx, profile,
		[]cycle.PeriodEntry{{Start: d("2024-06-01")}},
		nil,
		domain.ImportReplace,
	)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	periods, _, _ := s.History(ctx, profile)
	if len(periods) != 1 || !periods[0].Start.Equal(d("2024-06-01")) {
		t.Fatalf("replace did not discard state: %+v", periods)
	}
}

func TestImportEmptyFailsNoValidRecords(t *testing.T) {
	s := newSvc(t)
	err := s.Import(context.Background(), profile, nil, nil, domain.ImportMerge)
	if !perr.IsCode(err, perr.ErrorCodeNoValidRecords) {
		t.Fatalf("want NoValidRecords, got %v", err)
	}
}

func TestDeleteEventsAnyRemovesExactlyThatDay(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	for _, e := range []cycle.EventEntry{
		event("2024-03-01", true, cycle.FlowLight, at(8)),
		event("2024-03-01", true, cycle.FlowHeavy, at(9)),
		event("2024-03-02", true, cycle.FlowLight, at(10)),
	} {
		if err := s.LogEvent(ctx, profile, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	removed, err := s.DeleteEvents(ctx, profile, d("2024-03-01"), domain.DeleteAny, domain.EventFilter{})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}

	_, events, _ := s.History(ctx, profile)
	if len(events) != 1 || !events[0].Day.Equal(d("2024-03-02")) {
		t.Fatalf("other days must survive: %+v", events)
	}
}

func TestDeleteEventsLastRemovesNewest(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	for _, e := range []cycle.EventEntry{
		event("2024-03-01", true, cycle.FlowLight, at(8)),
		event("2024-03-01", true, cycle.FlowHeavy, at(11)),
		event("2024-03-01", false, cycle.FlowNone, at(9)),
	} {
		if err := s.LogEvent(ctx, profile, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	removed, err := s.DeleteEvents(ctx, profile, d("2024-03-01"), domain.DeleteLast, domain.EventFilter{})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}

	_, events, _ := s.History(ctx, profile)
	for _, e := range events {
		if e.CreatedAt.Equal(at(11)) {
			t.Fatalf("newest event survived: %+v", events)
		}
	}
	if len(events) != 2 {
		t.Fatalf("want 2 survivors, got %d", len(events))
	}
}

func TestDeleteEventsExactMatchesFilters(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	keep := event("2024-03-01", true, cycle.FlowHeavy, at(8), "cramps")
	drop := event("2024-03-01", true, cycle.FlowLight, at(9), "headache", "cramps")
	for _, e := range []cycle.EventEntry{keep, drop} {
		if err := s.LogEvent(ctx, profile, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	flow := cycle.FlowLight
	symptoms := []string{"cramps", "headache"} // set equality, order free
	removed, err := s.DeleteEvents(ctx, profile, d("2024-03-01"), domain.DeleteExact, domain.EventFilter{
		Flow:     &flow,
		Symptoms: &symptoms,
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}

	_, events, _ := s.History(ctx, profile)
	if len(events) != 1 || events[0].Flow != cycle.FlowHeavy {
		t.Fatalf("wrong event removed: %+v", events)
	}
}

func TestDeleteEventsZeroMatchesIsNotAnError(t *testing.T) {
	s := newSvc(t)
	removed, err := s.DeleteEvents(context.Background(), profile, d("2024-03-01"), domain.DeleteAny, domain.EventFilter{})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed %d, want 0", removed)
	}
}

func TestDeleteEventsUnknownModeIsNoOp(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	if err := s.LogEvent(ctx, profile, event("2024-03-01", true, cycle.FlowLight, at(8))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	removed, err := s.DeleteEvents(ctx, profile, d("2024-03-01"), domain.DeleteMode("sideways"), domain.EventFilter{})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 0 {
		t.Fatalf("unknown mode must remove nothing, removed %d", removed)
	}
	_, events, _ := s.History(ctx, profile)
	if len(events) != 1 {
		t.Fatalf("unknown mode must leave state alone: %+v", events)
	}
}

func TestMutationTriggersRefreshHook(t *testing.T) {
	var mu sync.Mutex
	var refreshed []string
	s := New(repo.New(store.NewMemDocs()), Options{
		Refresh: func(_ context.Context, profileID string) {
			mu.Lock()
			refreshed = append(refreshed, profileID)
			mu.Unlock()
		},
	})

	if err := s.UpsertPeriod(context.Background(), profile, d("2024-03-01"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(refreshed) != 1 || refreshed[0] != profile {
		t.Fatalf("refresh hook not invoked: %v", refreshed)
	}
}
