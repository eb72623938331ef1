// Package domain holds calendar feed types and ports
package domain

import (
	"cycletrack/internal/platform/dates"
)

// Entry kinds in the calendar feed
const (
	KindPeriod    = "period"
	KindDetected  = "detected_period"
	KindPredicted = "predicted_period"
	KindFertility = "fertility_window"
)

// Entry is one all-day range in the feed; Start and End are inclusive
type Entry struct {
	Kind     string     `json:"kind"`
	Summary  string     `json:"summary"`
	Start    dates.Date `json:"start"`
	End      dates.Date `json:"end"`
	Upcoming bool       `json:"upcoming,omitempty"`
}

// FeedOut is the calendar feed for one profile
type FeedOut struct {
	Profile string     `json:"profile"`
	From    dates.Date `json:"from"`
	To      dates.Date `json:"to"`
	Entries []Entry    `json:"entries"`
}

// CreateEventInput records a period through the calendar surface
// only exact period titles are accepted
type CreateEventInput struct {
	Profile string `json:"profile"`
	Summary string `json:"summary" validate:"required"`
	Start   string `json:"start" validate:"required,isodate"`
	End     string `json:"end" validate:"omitempty,isodate"`
}
