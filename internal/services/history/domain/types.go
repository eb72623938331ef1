// Package domain holds history store types and ports
package domain

import "cycletrack/internal/core/cycle"

// ImportMode selects how imported records combine with stored state
type ImportMode string

// Import modes
const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

// DeleteMode selects which events on a day are removed
type DeleteMode string

// Delete modes
// an unrecognized mode is a no-op at the store level; the transport
// layer rejects it before it gets here
const (
	DeleteAny   DeleteMode = "any"
	DeleteLast  DeleteMode = "last"
	DeleteExact DeleteMode = "exact"
)

// EventFilter narrows exact-mode deletion
// nil fields match anything; Symptoms requires exact set equality
type EventFilter struct {
	Menstruating *bool
	Flow         *cycle.Flow
	Symptoms     *[]string
}
