// Package repo persists one history snapshot document per profile
package repo

import (
	"context"
	"encoding/json"

	"cycletrack/internal/core/cycle"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/logger"
	"cycletrack/internal/platform/store"
)

// Snapshot is the full persisted state for one profile
type Snapshot struct {
	Periods []cycle.PeriodEntry `json:"periods"`
	Events  []cycle.EventEntry  `json:"events"`
}

// Snapshots round-trips history documents keyed by profile id
type Snapshots struct {
	docs store.DocStore
}

// New constructs a Snapshots repo over the given document store
func New(docs store.DocStore) *Snapshots {
	if docs == nil {
		panic("history.Snapshots requires a non nil DocStore")
	}
	return &Snapshots{docs: docs}
}

func key(profileID string) string { return "history-" + profileID }

// Load returns the stored snapshot for a profile
// a corrupt snapshot resets to empty with the loss logged; setup must
// not fail outright on bad data
func (s *Snapshots) Load(ctx context.Context, profileID string) (Snapshot, error) {
	raw, ok, err := s.docs.Load(ctx, key(profileID))
	if err != nil {
		return Snapshot{}, perr.Wrapf(err, perr.ErrorCodeStorageUnavailable, "load history snapshot")
	}
	if !ok {
		return Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.C(ctx).Warn().
			Str("profile_id", profileID).
			Err(err).
			Msg("history snapshot corrupt, resetting to empty")
		return Snapshot{}, nil
	}
	return snap, nil
}

// Save replaces the stored snapshot for a profile
func (s *Snapshots) Save(ctx context.Context, profileID string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode history snapshot")
	}
	if err := s.docs.Save(ctx, key(profileID), raw); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStorageUnavailable, "save history snapshot")
	}
	return nil
}
