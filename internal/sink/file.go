package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbenali/matchmirror/internal/match"
)

// fileDocument is the on-disk layout: records keyed by match ID plus the
// write timestamp, so the file doubles as a human-inspectable mirror.
type fileDocument struct {
	Matches   map[string]match.Record `json:"matches"`
	UpdatedAt string                  `json:"updated_at"`
}

// FileSink persists the snapshot as a keyed JSON document on local disk.
type FileSink struct {
	path string
}

// NewFileSink creates a file sink at path, creating parent directories as
// needed. A leading ~/ expands to the home directory.
func NewFileSink(path string) (*FileSink, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileSink{path: path}, nil
}

// Upsert merges the snapshot into the stored document. Each batch rewrites
// the file, so a mid-upsert failure leaves earlier batches durable, matching
// the chunked-commit contract of the remote sinks.
func (f *FileSink) Upsert(ctx context.Context, snap match.Snapshot) error {
	doc, err := f.load()
	if err != nil {
		return err
	}

	return commitBatches(snap, BatchLimit, func(batch []match.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range batch {
			doc.Matches[r.ID] = r
		}
		return f.save(doc)
	})
}

// Purge clears the stored document and returns how many records it held.
func (f *FileSink) Purge(ctx context.Context) (int, error) {
	doc, err := f.load()
	if err != nil {
		return 0, err
	}
	deleted := len(doc.Matches)

	doc.Matches = make(map[string]match.Record)
	if err := f.save(doc); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (f *FileSink) load() (*fileDocument, error) {
	doc := &fileDocument{Matches: make(map[string]match.Record)}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}
	if doc.Matches == nil {
		doc.Matches = make(map[string]match.Record)
	}
	return doc, nil
}

func (f *FileSink) save(doc *fileDocument) error {
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}
	return nil
}
