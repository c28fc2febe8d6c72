package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/rbenali/matchmirror/internal/match"
)

// DryRunSink prints what would be published without touching any store.
type DryRunSink struct {
	out io.Writer
}

// NewDryRunSink creates a dry-run sink writing to out.
func NewDryRunSink(out io.Writer) *DryRunSink {
	return &DryRunSink{out: out}
}

// Upsert prints a one-line summary per record.
func (d *DryRunSink) Upsert(ctx context.Context, snap match.Snapshot) error {
	fmt.Fprintf(d.out, "DRY RUN - would upsert %d matches:\n", len(snap))
	for _, r := range snap {
		title := r.Teams.FullTitle
		if r.Teams.Home != nil && r.Teams.Away != nil {
			title = r.Teams.Home.Name + " - " + r.Teams.Away.Name
		}
		fmt.Fprintf(d.out, "  [%s] %s | %s | %s | %s\n",
			r.ID, title, r.Championship(), r.Info[match.InfoScore], r.Info[match.InfoStatus])
	}
	return nil
}

// Purge prints the purge that would happen.
func (d *DryRunSink) Purge(ctx context.Context) (int, error) {
	fmt.Fprintln(d.out, "DRY RUN - would purge the sink collection")
	return 0, nil
}
