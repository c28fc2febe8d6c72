package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rbenali/matchmirror/internal/match"
)

const createMatchesTable = `
CREATE TABLE IF NOT EXISTS matches (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertMatch = `
INSERT INTO matches (id, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

// PostgresSink stores records as JSONB rows keyed by match ID.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to the database and ensures the matches table
// exists.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createMatchesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating matches table: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// Upsert writes the snapshot in pipelined batches of at most BatchLimit
// statements. A failed batch aborts the remaining ones.
func (p *PostgresSink) Upsert(ctx context.Context, snap match.Snapshot) error {
	return commitBatches(snap, BatchLimit, func(records []match.Record) error {
		batch := &pgx.Batch{}
		for _, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encoding match %s: %w", r.ID, err)
			}
			batch.Queue(upsertMatch, r.ID, data)
		}

		results := p.pool.SendBatch(ctx, batch)
		for range records {
			if _, err := results.Exec(); err != nil {
				results.Close() //nolint:errcheck
				return err
			}
		}
		return results.Close()
	})
}

// Purge deletes all rows page by page, counting deletions.
func (p *PostgresSink) Purge(ctx context.Context) (int, error) {
	deleted := 0
	for {
		rows, err := p.pool.Query(ctx, `SELECT id FROM matches LIMIT $1`, PurgePageSize)
		if err != nil {
			return deleted, fmt.Errorf("listing matches: %w", err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return deleted, fmt.Errorf("reading match ids: %w", err)
		}
		if len(ids) == 0 {
			return deleted, nil
		}

		tag, err := p.pool.Exec(ctx, `DELETE FROM matches WHERE id = ANY($1)`, ids)
		if err != nil {
			return deleted, fmt.Errorf("deleting matches: %w", err)
		}
		deleted += int(tag.RowsAffected())
	}
}

// Close releases the connection pool.
func (p *PostgresSink) Close() {
	p.pool.Close()
}
