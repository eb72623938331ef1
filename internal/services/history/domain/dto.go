package domain

import "cycletrack/internal/core/cycle"

// UpsertPeriodInput records or completes a period
type UpsertPeriodInput struct {
	Profile string `json:"profile"`
	Start   string `json:"start" validate:"required,isodate"`
	End     string `json:"end" validate:"omitempty,isodate"`
}

// LogEventInput appends one daily observation
type LogEventInput struct {
	Profile      string   `json:"profile"`
	Day          string   `json:"day" validate:"required,isodate"`
	Menstruating bool     `json:"menstruating"`
	Flow         string   `json:"flow" validate:"omitempty,oneof=none spotting light medium heavy"`
	Symptoms     []string `json:"symptoms" validate:"omitempty,dive,min=1,max=120"`
}

// DeleteEventsInput removes events on a day by match mode
type DeleteEventsInput struct {
	Profile      string    `json:"profile"`
	Day          string    `json:"day" validate:"required,isodate"`
	Mode         string    `json:"mode" validate:"required,oneof=any last exact"`
	Menstruating *bool     `json:"menstruating"`
	Flow         *string   `json:"flow" validate:"omitempty,oneof=none spotting light medium heavy"`
	Symptoms     *[]string `json:"symptoms"`
}

// DeleteEventsResult reports how many events a delete removed
type DeleteEventsResult struct {
	Removed int `json:"removed"`
}

// HistoryOut is the full recorded history for one profile
type HistoryOut struct {
	Profile string              `json:"profile"`
	Periods []cycle.PeriodEntry `json:"periods"`
	Events  []cycle.EventEntry  `json:"events"`
}
