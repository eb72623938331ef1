// Package service builds the calendar projection of history and forecast
package service

import (
	"context"
	"sort"
	"strings"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/core/engine"
	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/services/calendar/domain"
	forecastdom "cycletrack/internal/services/forecast/domain"
	historydom "cycletrack/internal/services/history/domain"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Default feed range around today when the caller gives no bounds
const (
	defaultPastDays   = 60
	defaultFutureDays = 180
)

// Service defines the calendar service contract
type Service interface {
	Feed(ctx context.Context, ref string, from, to dates.Date) (domain.FeedOut, error)
	CreateEvent(ctx context.Context, in domain.CreateEventInput) (cycle.PeriodEntry, error)
}

// ProfilesPort narrows the profiles service to what the calendar needs
type ProfilesPort interface {
	profilesdom.ResolverPort
	profilesdom.AnchorPort
}

// Svc implements the calendar service
type Svc struct {
	history  historydom.ServicePort
	forecast forecastdom.ServicePort
	profiles ProfilesPort

	today func() dates.Date
}

// New constructs a calendar service
func New(history historydom.ServicePort, forecast forecastdom.ServicePort, profiles ProfilesPort) *Svc {
	if history == nil || forecast == nil || profiles == nil {
		panic("calendar.Service requires history, forecast, and profiles ports")
	}
	return &Svc{history: history, forecast: forecast, profiles: profiles, today: dates.Today}
}

// Feed assembles recorded, detected, and predicted ranges for a profile
// fertility windows appear only when the profile shows them and
// pregnancy mode is off
func (s *Svc) Feed(ctx context.Context, ref string, from, to dates.Date) (domain.FeedOut, error) {
	p, err := s.profiles.Resolve(ctx, ref)
	if err != nil {
		return domain.FeedOut{}, err
	}

	today := s.today()
	if from.IsZero() {
		from = today.AddDays(-defaultPastDays)
	}
	if to.IsZero() {
		to = today.AddDays(defaultFutureDays)
	}
	if to.Before(from) {
		return domain.FeedOut{}, perr.InvalidArgf("feed range end %s precedes start %s", to, from)
	}

	periods, events, err := s.history.History(ctx, p.ID)
	if err != nil {
		return domain.FeedOut{}, err
	}
	fc, err := s.forecast.Current(ctx, p.ID)
	if err != nil {
		return domain.FeedOut{}, err
	}

	var entries []domain.Entry
	entries = append(entries, recordedEntries(periods, fc.PeriodLength)...)
	entries = append(entries, detectedEntries(periods, events)...)
	entries = append(entries, predictedEntries(fc.Forecast, today)...)
	if p.ShowFertility && !p.PregnancyMode {
		entries = append(entries, fertilityEntries(fc.Forecast)...)
	}

	entries = clipRange(entries, from, to)
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Start.Compare(entries[j].Start); c != 0 {
			return c < 0
		}
		return entries[i].Kind < entries[j].Kind
	})

	return domain.FeedOut{Profile: p.ID, From: from, To: to, Entries: entries}, nil
}

func recordedEntries(periods []cycle.PeriodEntry, periodLen int) []domain.Entry {
	out := make([]domain.Entry, 0, len(periods))
	for _, p := range periods {
		end := p.Start.AddDays(periodLen - 1)
		if p.End != nil {
			end = *p.End
		}
		out = append(out, domain.Entry{
			Kind:    domain.KindPeriod,
			Summary: "Period",
			Start:   p.Start,
			End:     end,
		})
	}
	return out
}

// detectedEntries lists spans inferred from daily logs that have no
// recorded counterpart on the same start
func detectedEntries(periods []cycle.PeriodEntry, events []cycle.EventEntry) []domain.Entry {
	recorded := make(map[dates.Date]struct{}, len(periods))
	for _, p := range periods {
		recorded[p.Start] = struct{}{}
	}
	var out []domain.Entry
	for _, d := range engine.DetectPeriods(events) {
		if _, ok := recorded[d.Start]; ok {
			continue
		}
		out = append(out, domain.Entry{
			Kind:    domain.KindDetected,
			Summary: "Period (from daily logs)",
			Start:   d.Start,
			End:     *d.End,
		})
	}
	return out
}

func predictedEntries(fc engine.Forecast, today dates.Date) []domain.Entry {
	var out []domain.Entry
	upcomingMarked := false
	mark := func(e domain.Entry) domain.Entry {
		if !upcomingMarked && !e.Start.Before(today) {
			e.Upcoming = true
			upcomingMarked = true
		}
		return e
	}

	if len(fc.PredictedPeriodCenters) == 0 {
		if fc.NextPeriodStart != nil {
			out = append(out, mark(domain.Entry{
				Kind:    domain.KindPredicted,
				Summary: "Predicted period",
				Start:   *fc.NextPeriodStart,
				End:     fc.NextPeriodStart.AddDays(fc.PeriodLength - 1),
			}))
		}
		return out
	}

	for _, center := range fc.PredictedPeriodCenters {
		out = append(out, mark(domain.Entry{
			Kind:    domain.KindPredicted,
			Summary: "Predicted period",
			Start:   center.AddDays(-fc.Variation),
			End:     center.AddDays(fc.Variation),
		}))
	}
	return out
}

func fertilityEntries(fc engine.Forecast) []domain.Entry {
	if len(fc.PredictedFertilityWindows) == 0 {
		if fc.FertilityWindowStart == nil || fc.FertilityWindowEnd == nil {
			return nil
		}
		return []domain.Entry{{
			Kind:    domain.KindFertility,
			Summary: "Fertility window",
			Start:   *fc.FertilityWindowStart,
			End:     *fc.FertilityWindowEnd,
		}}
	}
	out := make([]domain.Entry, 0, len(fc.PredictedFertilityWindows))
	for _, w := range fc.PredictedFertilityWindows {
		out = append(out, domain.Entry{
			Kind:    domain.KindFertility,
			Summary: "Fertility window",
			Start:   w.Start,
			End:     w.End,
		})
	}
	return out
}

func clipRange(entries []domain.Entry, from, to dates.Date) []domain.Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e.End.Before(from) || e.Start.After(to) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// CreateEvent records a period through the calendar surface
// anything but an exact period title is rejected
func (s *Svc) CreateEvent(ctx context.Context, in domain.CreateEventInput) (cycle.PeriodEntry, error) {
	switch strings.ToLower(strings.TrimSpace(in.Summary)) {
	case "menstruation", "period":
	default:
		return cycle.PeriodEntry{}, perr.WithField(
			perr.InvalidArgf("calendar events must be titled \"menstruation\" or \"period\""),
			"summary",
		)
	}

	p, err := s.profiles.Resolve(ctx, in.Profile)
	if err != nil {
		return cycle.PeriodEntry{}, err
	}
	start, err := dates.Parse(in.Start)
	if err != nil {
		return cycle.PeriodEntry{}, perr.WithField(err, "start")
	}
	var end *dates.Date
	if in.End != "" {
		e, err := dates.Parse(in.End)
		if err != nil {
			return cycle.PeriodEntry{}, perr.WithField(err, "end")
		}
		end = &e
	}

	if err := s.history.UpsertPeriod(ctx, p.ID, start, end); err != nil {
		return cycle.PeriodEntry{}, err
	}
	// a period logged from the calendar also moves the baseline anchor,
	// so forecasts follow it before detected history catches up
	if _, err := s.profiles.UpdateLastPeriodStart(ctx, p.ID, start); err != nil {
		return cycle.PeriodEntry{}, err
	}
	return cycle.PeriodEntry{Start: start, End: end}, nil
}
