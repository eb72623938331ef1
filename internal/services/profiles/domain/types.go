// Package domain holds profile types and ports
package domain

import (
	"time"

	"cycletrack/internal/platform/dates"
)

// Defaults applied when a profile is created without explicit lengths
const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// Profile is one tracked person's configuration
// LastPeriodStart seeds the forecast anchor until real history exists
type Profile struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LastPeriodStart dates.Date `json:"last_period_start"`
	CycleLength     int        `json:"cycle_length"`
	PeriodLength    int        `json:"period_length"`
	PregnancyMode   bool       `json:"pregnancy_mode"`
	ShowFertility   bool       `json:"show_fertility"`
	CreatedAt       time.Time  `json:"created_at"`
}
