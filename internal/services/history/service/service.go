// Package service contains the history store workflows
//
// Every mutation is one critical section per profile: load the
// snapshot, mutate in memory, persist, then trigger a forecast
// refresh. Two concurrent writers for the same profile serialize here
package service

import (
	"context"
	"sync"
	"time"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/services/history/domain"
	"cycletrack/internal/services/history/repo"
)

// Service defines the history service contract
type Service interface {
	domain.ServicePort
}

// Options configures optional collaborators
type Options struct {
	// Refresh runs after each successful mutation; may be nil
	Refresh domain.RefreshFunc
}

// Svc implements the history service
type Svc struct {
	snaps   *repo.Snapshots
	refresh domain.RefreshFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a history service
func New(snaps *repo.Snapshots, opt Options) *Svc {
	if snaps == nil {
		panic("history.Service requires a non nil Snapshots repo")
	}
	return &Svc{
		snaps:   snaps,
		refresh: opt.Refresh,
		locks:   map[string]*sync.Mutex{},
	}
}

// lockFor returns the per-profile mutation lock, creating it on demand
func (s *Svc) lockFor(profileID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[profileID] = l
	}
	return l
}

func (s *Svc) afterMutation(ctx context.Context, profileID string) {
	if s.refresh != nil {
		s.refresh(ctx, profileID)
	}
}

// UpsertPeriod records a period start or completes a known one
// a non-nil end replaces the stored end; a nil end never erases one
func (s *Svc) UpsertPeriod(ctx context.Context, profileID string, start dates.Date, end *dates.Date) error {
	if end != nil && end.Before(start) {
		return perr.InvalidArgf("period end %s precedes start %s", end, start)
	}

	l := s.lockFor(profileID)
	l.Lock()
	defer l.Unlock()

	snap, err := s.snaps.Load(ctx, profileID)
	if err != nil {
		return err
	}
	upsertPeriod(&snap, start, end)
	if err := s.snaps.Save(ctx, profileID, snap); err != nil {
		return err
	}
	s.afterMutation(ctx, profileID)
	return nil
}

func upsertPeriod(snap *repo.Snapshot, start dates.Date, end *dates.Date) {
	for i := range snap.Periods {
		if snap.Periods[i].Start.Equal(start) {
			if end != nil {
				e := *end
				snap.Periods[i].End = &e
			}
			return
		}
	}
	p := cycle.PeriodEntry{Start: start}
	if end != nil {
		e := *end
		p.End = &e
	}
	snap.Periods = append(snap.Periods, p)
	cycle.SortPeriods(snap.Periods)
}

// LogEvent appends one daily observation
// duplicates per day are allowed and meaningful; CreatedAt defaults to
// now when the caller left it zero
func (s *Svc) LogEvent(ctx context.Context, profileID string, e cycle.EventEntry) error {
	if _, ok := cycle.ParseFlow(string(e.Flow)); !ok {
		return perr.InvalidArgf("unknown flow level %q", e.Flow)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	l := s.lockFor(profileID)
	l.Lock()
	defer l.Unlock()

	snap, err := s.snaps.Load(ctx, profileID)
	if err != nil {
		return err
	}
	snap.Events = append(snap.Events, e)
	cycle.SortEvents(snap.Events)
	if err := s.snaps.Save(ctx, profileID, snap); err != nil {
		return err
	}
	s.afterMutation(ctx, profileID)
	return nil
}

// Import combines normalized records with stored state
// merge keeps every pre-existing period start and event identity;
// replace adopts the supplied sequences verbatim
func (s *Svc) Import(ctx context.Context, profileID string, periods []cycle.PeriodEntry, events []cycle.EventEntry, mode domain.ImportMode) error {
	if len(periods) == 0 && len(events) == 0 {
		return perr.NoValidRecordsf("import contained no usable periods or events")
	}

	l := s.lockFor(profileID)
	l.Lock()
	defer l.Unlock()

	snap, err := s.snaps.Load(ctx, profileID)
	if err != nil {
		return err
	}

	switch mode {
	case domain.ImportReplace:
		snap = repo.Snapshot{
			Periods: cycle.ClonePeriods(periods),
			Events:  cycle.CloneEvents(events),
		}
	case domain.ImportMerge:
		mergePeriods(&snap, periods)
		mergeEvents(&snap, events)
	default:
		return perr.InvalidArgf("unknown import mode %q", mode)
	}
	cycle.SortPeriods(snap.Periods)
	cycle.SortEvents(snap.Events)

	if err := s.snaps.Save(ctx, profileID, snap); err != nil {
		return err
	}
	s.afterMutation(ctx, profileID)
	return nil
}

func mergePeriods(snap *repo.Snapshot, incoming []cycle.PeriodEntry) {
	for _, in := range incoming {
		upsertPeriod(snap, in.Start, in.End)
	}
}

func mergeEvents(snap *repo.Snapshot, incoming []cycle.EventEntry) {
	byIdentity := map[string]int{}
	for i, e := range snap.Events {
		byIdentity[e.Identity()] = i
	}
	for _, in := range incoming {
		id := in.Identity()
		if i, ok := byIdentity[id]; ok {
			// same identity keeps the earliest created_at of the two
			if in.CreatedAt.Before(snap.Events[i].CreatedAt) {
				snap.Events[i].CreatedAt = in.CreatedAt
			}
			continue
		}
		snap.Events = append(snap.Events, in)
		byIdentity[id] = len(snap.Events) - 1
	}
}

// DeleteEvents removes events on a day by match mode, returning the
// count removed; zero matches is not an error
func (s *Svc) DeleteEvents(ctx context.Context, profileID string, day dates.Date, mode domain.DeleteMode, filter domain.EventFilter) (int, error) {
	l := s.lockFor(profileID)
	l.Lock()
	defer l.Unlock()

	snap, err := s.snaps.Load(ctx, profileID)
	if err != nil {
		return 0, err
	}

	removed := deleteEvents(&snap, day, mode, filter)
	if removed == 0 {
		return 0, nil
	}
	if err := s.snaps.Save(ctx, profileID, snap); err != nil {
		return 0, err
	}
	s.afterMutation(ctx, profileID)
	return removed, nil
}

func deleteEvents(snap *repo.Snapshot, day dates.Date, mode domain.DeleteMode, filter domain.EventFilter) int {
	switch mode {
	case domain.DeleteAny:
		return deleteWhere(snap, func(e cycle.EventEntry) bool {
			return e.Day.Equal(day)
		})
	case domain.DeleteLast:
		last := -1
		for i, e := range snap.Events {
			if !e.Day.Equal(day) {
				continue
			}
			// ties on created_at keep the later original index
			if last < 0 || !e.CreatedAt.Before(snap.Events[last].CreatedAt) {
				last = i
			}
		}
		if last < 0 {
			return 0
		}
		snap.Events = append(snap.Events[:last], snap.Events[last+1:]...)
		return 1
	case domain.DeleteExact:
		return deleteWhere(snap, func(e cycle.EventEntry) bool {
			return e.Day.Equal(day) && matches(e, filter)
		})
	default:
		// unrecognized modes are a deliberate no-op here
		return 0
	}
}

func deleteWhere(snap *repo.Snapshot, match func(cycle.EventEntry) bool) int {
	kept := snap.Events[:0]
	removed := 0
	for _, e := range snap.Events {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	snap.Events = kept
	return removed
}

func matches(e cycle.EventEntry, f domain.EventFilter) bool {
	if f.Menstruating != nil && e.Menstruating != *f.Menstruating {
		return false
	}
	if f.Flow != nil && e.Flow != *f.Flow {
		return false
	}
	if f.Symptoms != nil && !sameSymptomSet(e.Symptoms, *f.Symptoms) {
		return false
	}
	return true
}

func sameSymptomSet(a, b []string) bool {
	as, bs := setOf(a), setOf(b)
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if _, ok := bs[s]; !ok {
			return false
		}
	}
	return true
}

func setOf(ss []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

// History returns consistent copies of a profile's period and event
// lists; callers may read while another caller mutates
func (s *Svc) History(ctx context.Context, profileID string) ([]cycle.PeriodEntry, []cycle.EventEntry, error) {
	l := s.lockFor(profileID)
	l.Lock()
	defer l.Unlock()

	snap, err := s.snaps.Load(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	return cycle.ClonePeriods(snap.Periods), cycle.CloneEvents(snap.Events), nil
}
