package cycle

import (
	"testing"
	"time"

	"cycletrack/internal/platform/dates"
)

func d(s string) dates.Date { return dates.MustParse(s) }

func TestParseFlow(t *testing.T) {
	cases := map[string]Flow{
		"medium":   FlowMedium,
		" HEAVY ":  FlowHeavy,
		"Spotting": FlowSpotting,
	}
	for in, want := range cases {
		got, ok := ParseFlow(in)
		if !ok || got != want {
			t.Fatalf("ParseFlow(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseFlow("torrential"); ok {
		t.Fatalf("unknown flow must not parse")
	}
}

func TestDuration(t *testing.T) {
	open := PeriodEntry{Start: d("2024-01-01")}
	if _, ok := open.Duration(); ok {
		t.Fatalf("open period has no duration")
	}
	end := d("2024-01-05")
	got, ok := PeriodEntry{Start: d("2024-01-01"), End: &end}.Duration()
	if !ok || got != 5 {
		t.Fatalf("duration = %d, want 5 (inclusive)", got)
	}
}

func TestIdentityIgnoresSymptomOrder(t *testing.T) {
	a := EventEntry{Day: d("2024-01-01"), Menstruating: true, Flow: FlowLight, Symptoms: []string{"cramps", "headache"}}
	b := EventEntry{Day: d("2024-01-01"), Menstruating: true, Flow: FlowLight, Symptoms: []string{"headache", "cramps"}}
	if a.Identity() != b.Identity() {
		t.Fatalf("symptom order must not change identity")
	}

	c := b
	c.Menstruating = false
	if a.Identity() == c.Identity() {
		t.Fatalf("menstruating flag must change identity")
	}
}

func TestSortEventsStableWithinDay(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	es := []EventEntry{
		{Day: d("2024-01-02"), CreatedAt: base},
		{Day: d("2024-01-01"), CreatedAt: base.Add(time.Hour)},
		{Day: d("2024-01-01"), CreatedAt: base},
	}
	SortEvents(es)
	if !es[0].Day.Equal(d("2024-01-01")) || !es[0].CreatedAt.Equal(base) {
		t.Fatalf("earliest entry not first: %+v", es)
	}
	if !es[2].Day.Equal(d("2024-01-02")) {
		t.Fatalf("later day not last: %+v", es)
	}
}

func TestClonePeriodsDoesNotAlias(t *testing.T) {
	end := d("2024-01-05")
	src := []PeriodEntry{{Start: d("2024-01-01"), End: &end}}
	cp := ClonePeriods(src)
	*cp[0].End = d("2024-12-31")
	if !src[0].End.Equal(d("2024-01-05")) {
		t.Fatalf("clone aliased the original end")
	}
}

func TestCloneEventsDoesNotAlias(t *testing.T) {
	src := []EventEntry{{Day: d("2024-01-01"), Symptoms: []string{"cramps"}}}
	cp := CloneEvents(src)
	cp[0].Symptoms[0] = "changed"
	if src[0].Symptoms[0] != "cramps" {
		t.Fatalf("clone aliased the symptom slice")
	}
}
