// Package cycle holds the canonical history record types shared by the
// store and the prediction engine
package cycle

import (
	"sort"
	"strings"
	"time"

	"cycletrack/internal/platform/dates"
)

// Flow is the observed bleeding intensity for a logged day
type Flow string

// Flow levels in increasing intensity
const (
	FlowNone     Flow = "none"
	FlowSpotting Flow = "spotting"
	FlowLight    Flow = "light"
	FlowMedium   Flow = "medium"
	FlowHeavy    Flow = "heavy"
)

// Flows lists every valid flow level
func Flows() []Flow {
	return []Flow{FlowNone, FlowSpotting, FlowLight, FlowMedium, FlowHeavy}
}

// ParseFlow maps a string onto a Flow level
// returns false when s is not a recognized level
func ParseFlow(s string) (Flow, bool) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case FlowNone:
		return FlowNone, true
	case FlowSpotting:
		return FlowSpotting, true
	case FlowLight:
		return FlowLight, true
	case FlowMedium:
		return FlowMedium, true
	case FlowHeavy:
		return FlowHeavy, true
	default:
		return "", false
	}
}

// PeriodEntry is one menstruation episode, recorded, imported, or detected
// Start is the unique key; End is inclusive and may be unknown
type PeriodEntry struct {
	Start dates.Date  `json:"start"`
	End   *dates.Date `json:"end"`
}

// Duration returns the inclusive span in days and whether End is known
func (p PeriodEntry) Duration() (int, bool) {
	if p.End == nil {
		return 0, false
	}
	return p.End.DaysSince(p.Start) + 1, true
}

// EventEntry is a single user-logged observation for one day
// multiple entries may share a day; CreatedAt disambiguates them
type EventEntry struct {
	Day          dates.Date `json:"day"`
	Menstruating bool       `json:"menstruating"`
	Flow         Flow       `json:"flow"`
	Symptoms     []string   `json:"symptoms"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Identity is the dedup key for merge purposes
// symptoms compare as a set, so they are sorted before joining
func (e EventEntry) Identity() string {
	syms := append([]string(nil), e.Symptoms...)
	sort.Strings(syms)
	b := strings.Builder{}
	b.WriteString(e.Day.String())
	b.WriteByte('|')
	if e.Menstruating {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	b.WriteByte('|')
	b.WriteString(string(e.Flow))
	b.WriteByte('|')
	b.WriteString(strings.Join(syms, ","))
	return b.String()
}

// SortPeriods orders periods strictly increasing by Start in place
func SortPeriods(ps []PeriodEntry) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Start.Before(ps[j].Start) })
}

// SortEvents orders events non-decreasing by (Day, CreatedAt) in place
func SortEvents(es []EventEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		if c := es[i].Day.Compare(es[j].Day); c != 0 {
			return c < 0
		}
		return es[i].CreatedAt.Before(es[j].CreatedAt)
	})
}

// ClonePeriods returns a deep copy so the engine can read without aliasing
func ClonePeriods(ps []PeriodEntry) []PeriodEntry {
	out := make([]PeriodEntry, len(ps))
	for i, p := range ps {
		out[i] = p
		if p.End != nil {
			e := *p.End
			out[i].End = &e
		}
	}
	return out
}

// CloneEvents returns a deep copy of the event list
func CloneEvents(es []EventEntry) []EventEntry {
	out := make([]EventEntry, len(es))
	for i, e := range es {
		out[i] = e
		out[i].Symptoms = append([]string(nil), e.Symptoms...)
	}
	return out
}
