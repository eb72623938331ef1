package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	perr "cycletrack/internal/platform/errors"
)

// pgDocs is the Postgres-backed DocStore: one jsonb row per key
type pgDocs struct {
	q RowQuerier
}

const pgDocsSchema = `
CREATE TABLE IF NOT EXISTS cycle_snapshots (
	doc_key    text PRIMARY KEY,
	doc        jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

func openPGDocs(ctx context.Context, q RowQuerier) (DocStore, error) {
	if _, err := q.Exec(ctx, pgDocsSchema); err != nil {
		return nil, perr.FromPostgresf(err, "ensure snapshot schema")
	}
	return &pgDocs{q: q}, nil
}

func (p *pgDocs) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var doc []byte
	err := p.q.QueryRow(ctx, `SELECT doc FROM cycle_snapshots WHERE doc_key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.FromPostgresf(err, "load snapshot %q", key)
	}
	return doc, true, nil
}

func (p *pgDocs) Save(ctx context.Context, key string, doc []byte) error {
	_, err := p.q.Exec(ctx, `
		INSERT INTO cycle_snapshots (doc_key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (doc_key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		key, doc)
	return perr.FromPostgresf(err, "save snapshot %q", key)
}

func (p *pgDocs) Delete(ctx context.Context, key string) error {
	_, err := p.q.Exec(ctx, `DELETE FROM cycle_snapshots WHERE doc_key = $1`, key)
	return perr.FromPostgresf(err, "delete snapshot %q", key)
}
