// Package domain holds forecast types and ports
package domain

import (
	"context"

	"cycletrack/internal/core/engine"
)

// Out is a computed forecast tagged with its profile
type Out struct {
	Profile string `json:"profile"`
	engine.Forecast
}

// ServicePort is the interface implemented by the forecast service
type ServicePort interface {
	// Current resolves ref and returns an up-to-date forecast,
	// recomputing when the cached one is stale
	Current(ctx context.Context, ref string) (Out, error)

	// Refresh recomputes and caches the forecast for the resolved
	// profile, returning the fresh value
	Refresh(ctx context.Context, ref string) (Out, error)

	// RefreshAll recomputes every registered profile's forecast
	RefreshAll(ctx context.Context) error
}
