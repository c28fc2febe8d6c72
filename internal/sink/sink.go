package sink

import (
	"context"
	"fmt"

	"github.com/rbenali/matchmirror/internal/match"
)

const (
	// BatchLimit is the maximum number of upsert operations per commit,
	// below the atomic-batch ceiling of the backing stores.
	BatchLimit = 450

	// PurgePageSize bounds how many keys a purge enumerates per page.
	PurgePageSize = 100
)

// Sink is a keyed collection the pipeline publishes snapshots into.
type Sink interface {
	// Upsert merge-writes every record in the snapshot, keyed by record ID.
	// It returns an error if any batch commit fails; earlier batches may
	// already be committed, and the caller retries the full publish next cycle.
	Upsert(ctx context.Context, snap match.Snapshot) error

	// Purge deletes all stored records and reports how many were removed.
	Purge(ctx context.Context) (int, error)
}

// commitBatches splits the snapshot into commits of at most limit records and
// applies them in order. The first failing commit aborts the remaining ones.
func commitBatches(snap match.Snapshot, limit int, commit func(batch []match.Record) error) error {
	for start := 0; start < len(snap); start += limit {
		end := start + limit
		if end > len(snap) {
			end = len(snap)
		}
		if err := commit(snap[start:end]); err != nil {
			return fmt.Errorf("committing records %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}
