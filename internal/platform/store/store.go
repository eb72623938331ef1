// Package store provides a unified interface to the durable backends: the
// per-profile snapshot document store and, optionally, Postgres
package store

import (
	"context"
	"errors"
	"fmt"

	"cycletrack/internal/platform/logger"
)

// Store is the facade for the configured backends
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// PG is the postgres sql seam, nil when the file backend is selected
	PG TxRunner

	// Docs is the snapshot document store, never nil after a successful Open
	Docs DocStore
}

// DocStore persists whole JSON documents keyed by name.
// It is the persistence collaborator for history snapshots and the
// profile registry: load-all, save-all, nothing incremental
type DocStore interface {
	// Load returns the document bytes and true, or (nil, false) when absent
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save replaces the document atomically
	Save(ctx context.Context, key string, doc []byte) error
	// Delete removes the document; absent keys are not an error
	Delete(ctx context.Context, key string) error
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Backend names accepted by SnapshotConfig
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config aggregates per backend configuration
type Config struct {
	Snapshot SnapshotConfig
	PG       PGConfig
}

// SnapshotConfig selects and configures the document backend
type SnapshotConfig struct {
	// Backend is "file" or "postgres"
	Backend string
	// Dir is the snapshot directory for the file backend
	Dir string
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// Option mutates the Store during Open
type Option func(*Store) error

// WithLogger sets the store logger
func WithLogger(l logger.Logger) Option {
	return func(s *Store) error {
		s.Log = l
		return nil
	}
}

// Open constructs a Store with the requested backends
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	switch cfg.Snapshot.Backend {
	case BackendFile, "":
		docs, err := openFileDocs(cfg.Snapshot.Dir)
		if err != nil {
			return nil, err
		}
		s.Docs = docs

	case BackendPostgres:
		pgClient, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgClient
		docs, err := openPGDocs(ctx, pgClient)
		if err != nil {
			return nil, err
		}
		s.Docs = docs

	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}

	return s, nil
}

// Guard verifies all configured seams the Store knows about
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.PG != nil {
		if p, ok := any(s.PG).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("pg: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases backend resources
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := any(s.PG).(interface{ Close() error }); ok && s.PG != nil {
		return c.Close()
	}
	return nil
}
