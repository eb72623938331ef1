// Package repo persists the profile registry as a single document
package repo

import (
	"context"
	"encoding/json"

	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/logger"
	"cycletrack/internal/platform/store"
	"cycletrack/internal/services/profiles/domain"
)

const docKey = "profiles"

// Registry round-trips the full profile list
type Registry struct {
	docs store.DocStore
}

// New constructs a Registry over the given document store
func New(docs store.DocStore) *Registry {
	if docs == nil {
		panic("profiles.Registry requires a non nil DocStore")
	}
	return &Registry{docs: docs}
}

type registryDoc struct {
	Profiles []domain.Profile `json:"profiles"`
}

// Load returns every stored profile
// a corrupt document resets to an empty registry with the loss logged
func (r *Registry) Load(ctx context.Context) ([]domain.Profile, error) {
	raw, ok, err := r.docs.Load(ctx, docKey)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStorageUnavailable, "load profile registry")
	}
	if !ok {
		return nil, nil
	}
	var doc registryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("profile registry corrupt, resetting to empty")
		return nil, nil
	}
	return doc.Profiles, nil
}

// Save replaces the stored profile list
func (r *Registry) Save(ctx context.Context, ps []domain.Profile) error {
	raw, err := json.Marshal(registryDoc{Profiles: ps})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode profile registry")
	}
	if err := r.docs.Save(ctx, docKey, raw); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStorageUnavailable, "save profile registry")
	}
	return nil
}
