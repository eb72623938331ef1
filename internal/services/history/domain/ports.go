package domain

import (
	"context"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/platform/dates"
)

// ServicePort is the interface implemented by the history service
// all mutations are atomic read-modify-write-persist units per profile
type ServicePort interface {
	UpsertPeriod(ctx context.Context, profileID string, start dates.Date, end *dates.Date) error
	LogEvent(ctx context.Context, profileID string, e cycle.EventEntry) error
	Import(ctx context.Context, profileID string, periods []cycle.PeriodEntry, events []cycle.EventEntry, mode ImportMode) error
	DeleteEvents(ctx context.Context, profileID string, day dates.Date, mode DeleteMode, filter EventFilter) (int, error)
	ReaderPort
}

// ReaderPort hands out consistent copies of a profile's history
type ReaderPort interface {
	History(ctx context.Context, profileID string) ([]cycle.PeriodEntry, []cycle.EventEntry, error)
}

// RefreshFunc is invoked after a successful mutation so forecasts can
// be recomputed; failures are the callee's to log, never the mutation's
type RefreshFunc func(ctx context.Context, profileID string)
