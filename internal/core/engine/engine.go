// Package engine computes a cycle forecast from history records
//
// The engine is pure: given period and event lists plus baseline
// configuration it returns an immutable Forecast and performs no I/O.
// Every branch has a defined fallback so a forecast is always available
package engine

import (
	"math"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/core/cyclestats"
	"cycletrack/internal/platform/dates"
)

// Domain heuristics for fertility-window derivation
// the luteal phase is assumed constant with a 5-day pre-ovulation and
// 1-day post-ovulation fertile margin
const (
	lutealPhaseDays  = 14
	fertileDaysPre   = 5
	fertileDaysPost  = 1
	maxPlausibleGap  = 99
	minForecastDiffs = 3
	horizonDays      = 2 * 365

	// standard deviation below this counts as a regular cycle
	regularStdDev = 1.5
)

// Baseline carries the configured fallbacks used when history is thin
type Baseline struct {
	LastPeriodStart dates.Date
	CycleLength     int
	PeriodLength    int
}

// Inputs is everything a forecast computation reads
type Inputs struct {
	Periods       []cycle.PeriodEntry
	Events        []cycle.EventEntry
	Baseline      Baseline
	PregnancyMode bool
	Today         dates.Date
}

// Window is an inclusive date range
type Window struct {
	Start dates.Date `json:"start"`
	End   dates.Date `json:"end"`
}

// Forecast is the engine output
// pointer fields are nil when no prediction applies, including all
// forward-looking fields while pregnancy mode is on
type Forecast struct {
	Today                 dates.Date `json:"today"`
	DayOfCycle            int        `json:"day_of_cycle"`
	CurrentlyMenstruating bool       `json:"currently_menstruating"`

	CycleLength  int              `json:"cycle_length"`
	PeriodLength int              `json:"period_length"`
	CycleStats   cyclestats.Stats `json:"cycle_stats"`
	PeriodStats  cyclestats.Stats `json:"period_stats"`

	NextPeriodStart    *dates.Date `json:"next_period_start"`
	NextPeriodEarliest *dates.Date `json:"next_period_earliest"`
	NextPeriodLatest   *dates.Date `json:"next_period_latest"`

	FertilityWindowStart *dates.Date `json:"fertility_window_start"`
	FertilityWindowEnd   *dates.Date `json:"fertility_window_end"`

	PredictedPeriodCenters    []dates.Date `json:"predicted_period_centers"`
	PredictedFertilityWindows []Window     `json:"predicted_fertility_windows"`

	// Variation is the uncertainty band in days around each predicted
	// center; zero when no multi-cycle forecast was produced
	Variation int `json:"variation"`

	PregnancyMode bool `json:"pregnancy_mode"`
}

// Compute derives a Forecast from in
func Compute(in Inputs) Forecast {
	base := basePeriods(in.Periods, DetectPeriods(in.Events))

	cycleLen, cycleStats := effectiveCycleLength(base, in.Baseline.CycleLength)
	periodLen, periodStats := effectivePeriodLength(base, in.Baseline.PeriodLength)

	anchor := currentAnchor(base, in.Baseline.LastPeriodStart, cycleLen, in.Today)

	out := Forecast{
		Today:         in.Today,
		CycleLength:   cycleLen,
		PeriodLength:  periodLen,
		CycleStats:    cycleStats,
		PeriodStats:   periodStats,
		PregnancyMode: in.PregnancyMode,
	}
	if !anchor.IsZero() {
		out.DayOfCycle = in.Today.DaysSince(anchor) + 1
	}

	out.CurrentlyMenstruating = currentlyMenstruating(in.Events, base, in.Today, periodLen, out.DayOfCycle)

	if in.PregnancyMode {
		return out
	}

	if !multiCycleForecast(&out, base, in.Today) {
		fallbackForecast(&out, anchor, cycleLen)
	}
	return out
}

// DetectPeriods collapses consecutive menstruating-day logs into
// synthetic period spans, recovering periods the user only logged daily
func DetectPeriods(events []cycle.EventEntry) []cycle.PeriodEntry {
	seen := map[dates.Date]struct{}{}
	days := make([]dates.Date, 0, len(events))
	for _, e := range events {
		if !e.Menstruating {
			continue
		}
		if _, dup := seen[e.Day]; dup {
			continue
		}
		seen[e.Day] = struct{}{}
		days = append(days, e.Day)
	}
	if len(days) == 0 {
		return nil
	}
	dates.Sort(days)

	var out []cycle.PeriodEntry
	runStart, runEnd := days[0], days[0]
	flush := func() {
		end := runEnd
		out = append(out, cycle.PeriodEntry{Start: runStart, End: &end})
	}
	for _, d := range days[1:] {
		if d.DaysSince(runEnd) == 1 {
			runEnd = d
			continue
		}
		flush()
		runStart, runEnd = d, d
	}
	flush()
	return out
}

// basePeriods picks the period list the estimators run on
// three or more recorded periods stand alone; one or two are merged with
// detected spans (recorded wins on a shared start); none falls back to
// detected spans entirely
func basePeriods(recorded, detected []cycle.PeriodEntry) []cycle.PeriodEntry {
	if len(recorded) >= 3 {
		return cycle.ClonePeriods(recorded)
	}
	if len(recorded) == 0 {
		return detected
	}
	byStart := map[dates.Date]cycle.PeriodEntry{}
	for _, p := range detected {
		byStart[p.Start] = p
	}
	for _, p := range cycle.ClonePeriods(recorded) {
		byStart[p.Start] = p
	}
	merged := make([]cycle.PeriodEntry, 0, len(byStart))
	for _, p := range byStart {
		merged = append(merged, p)
	}
	cycle.SortPeriods(merged)
	return merged
}

func startDiffs(base []cycle.PeriodEntry) []int {
	if len(base) < 2 {
		return nil
	}
	diffs := make([]int, 0, len(base)-1)
	for i := 1; i < len(base); i++ {
		diffs = append(diffs, base[i].Start.DaysSince(base[i-1].Start))
	}
	return diffs
}

func effectiveCycleLength(base []cycle.PeriodEntry, fallback int) (int, cyclestats.Stats) {
	diffs := startDiffs(base)
	stats := cyclestats.Quartiles(diffs)
	if len(diffs) < 2 {
		return fallback, stats
	}
	kept := cyclestats.FilterIQR(diffs)
	if len(kept) == 0 {
		return fallback, stats
	}
	eff := cyclestats.WeightedRecentMean(kept)
	if eff < 1 {
		eff = 1
	}
	return eff, stats
}

func effectivePeriodLength(base []cycle.PeriodEntry, fallback int) (int, cyclestats.Stats) {
	var durations []int
	for _, p := range base {
		if d, ok := p.Duration(); ok {
			durations = append(durations, d)
		}
	}
	stats := cyclestats.Quartiles(durations)
	if len(durations) == 0 {
		return fallback, stats
	}
	kept := cyclestats.FilterIQR(durations)
	if len(kept) == 0 {
		return fallback, stats
	}
	eff := cyclestats.WeightedRecentMean(kept)
	if eff < 1 {
		eff = 1
	}
	return eff, stats
}

// currentAnchor advances the most recent known start forward by whole
// cycle multiples to the latest boundary not after today
// it never advances into the future and never moves a future start back
func currentAnchor(base []cycle.PeriodEntry, baselineStart dates.Date, cycleLen int, today dates.Date) dates.Date {
	anchor := baselineStart
	if len(base) > 0 {
		anchor = base[len(base)-1].Start
	}
	if anchor.IsZero() || cycleLen < 1 || anchor.After(today) {
		return anchor
	}
	for {
		next := anchor.AddDays(cycleLen)
		if next.After(today) {
			return anchor
		}
		anchor = next
	}
}

func currentlyMenstruating(events []cycle.EventEntry, base []cycle.PeriodEntry, today dates.Date, periodLen, dayOfCycle int) bool {
	sawToday := false
	for _, e := range events {
		if !e.Day.Equal(today) {
			continue
		}
		sawToday = true
		if e.Menstruating {
			return true
		}
	}
	if sawToday {
		return false
	}

	if len(base) > 0 {
		last := base[len(base)-1]
		if !last.Start.After(today) {
			end := last.End
			if end == nil {
				e := last.Start.AddDays(periodLen - 1)
				end = &e
			}
			return !today.Before(last.Start) && !today.After(*end)
		}
	}

	return dayOfCycle >= 1 && dayOfCycle <= periodLen
}

// multiCycleForecast fills the predicted lists and the legacy scalar
// fields when enough regular history exists; reports whether it did
func multiCycleForecast(out *Forecast, base []cycle.PeriodEntry, today dates.Date) bool {
	var valid []int
	for _, d := range startDiffs(base) {
		if d <= maxPlausibleGap {
			valid = append(valid, d)
		}
	}
	if len(valid) < minForecastDiffs {
		return false
	}

	mean, std := cyclestats.MeanStdDev(valid)
	distance := int(math.Round(mean))
	if distance < 1 {
		distance = 1
	}
	variation := 1
	if std >= regularStdDev {
		variation = 2
	}

	horizon := today.AddDays(horizonDays)
	center := base[len(base)-1].Start.AddDays(distance)
	for !center.After(horizon) {
		out.PredictedPeriodCenters = append(out.PredictedPeriodCenters, center)
		earliest := center.AddDays(-variation)
		latest := center.AddDays(variation)
		out.PredictedFertilityWindows = append(out.PredictedFertilityWindows, Window{
			Start: earliest.AddDays(-(lutealPhaseDays + fertileDaysPre)),
			End:   latest.AddDays(-(lutealPhaseDays - fertileDaysPost)),
		})
		center = center.AddDays(distance)
	}
	if len(out.PredictedPeriodCenters) == 0 {
		return false
	}

	out.Variation = variation
	first := out.PredictedPeriodCenters[0]
	out.NextPeriodStart = first.Ptr()
	out.NextPeriodEarliest = first.AddDays(-variation).Ptr()
	out.NextPeriodLatest = first.AddDays(variation).Ptr()
	out.FertilityWindowStart = out.PredictedFertilityWindows[0].Start.Ptr()
	out.FertilityWindowEnd = out.PredictedFertilityWindows[0].End.Ptr()
	return true
}

// fallbackForecast derives the legacy scalar fields from the anchor
// alone when the multi-cycle forecast cannot be produced
func fallbackForecast(out *Forecast, anchor dates.Date, cycleLen int) {
	if anchor.IsZero() {
		return
	}
	next := anchor.AddDays(cycleLen)
	out.NextPeriodStart = next.Ptr()

	ovulationDay := cycleLen - lutealPhaseDays
	if ovulationDay < 1 {
		ovulationDay = 1
	}
	ovulation := anchor.AddDays(ovulationDay)
	out.FertilityWindowStart = ovulation.AddDays(-fertileDaysPre).Ptr()
	out.FertilityWindowEnd = ovulation.AddDays(fertileDaysPost).Ptr()
}
