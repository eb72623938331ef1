package domain

import (
	"context"

	"cycletrack/internal/platform/dates"
)

// ServicePort is the interface implemented by the profiles service
type ServicePort interface {
	Create(ctx context.Context, in CreateInput) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	UpdateOptions(ctx context.Context, in OptionsInput) (Profile, error)
	ResolverPort
	AnchorPort
}

// AnchorPort moves a profile's baseline last-period anchor
// the calendar create-event surface uses this so recording a period
// also advances the seed used before real history accumulates
type AnchorPort interface {
	UpdateLastPeriodStart(ctx context.Context, ref string, start dates.Date) (Profile, error)
}

// ResolverPort maps a caller-supplied profile reference onto a Profile
// an empty ref resolves only when exactly one profile exists
type ResolverPort interface {
	Resolve(ctx context.Context, ref string) (Profile, error)
}
