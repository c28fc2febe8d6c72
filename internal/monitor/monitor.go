// Package monitor drives the poll loop: harvest, change detection, and
// publication into the sink.
//
// One cycle resolves the listing, fans out over the detail pages, aggregates
// the snapshot, and publishes it only when the content fingerprint changed or
// the calendar day rolled over. The day rollover also purges the sink first,
// so the store only ever holds the current day's matches. Cycles never
// overlap and any cycle-level failure is isolated: alerted, cooled down, and
// retried.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rbenali/matchmirror/internal/alert"
	"github.com/rbenali/matchmirror/internal/logger"
	"github.com/rbenali/matchmirror/internal/match"
	"github.com/rbenali/matchmirror/internal/sink"
)

const (
	// DefaultInterval is the pause between poll cycles.
	DefaultInterval = 60 * time.Second

	// cooldown is the longer pause after a cycle-level failure.
	cooldown = 60 * time.Second

	// localOffset converts UTC to the clock day boundaries are judged in.
	localOffset = time.Hour
)

// CycleState carries change-detection state between cycles. It is owned and
// mutated exclusively by the monitor loop, only after a successful publish.
type CycleState struct {
	// Fingerprint of the last successfully published snapshot; empty before
	// the first publish so the first non-empty snapshot always publishes.
	Fingerprint string

	// PublishedDay is the local calendar day of the last publish. The zero
	// value predates any real date, so the first publish also purges.
	PublishedDay time.Time
}

// Harvester produces the day's match records. Satisfied by *scraper.Scraper.
type Harvester interface {
	ResolveListing(ctx context.Context) ([]string, error)
	Harvest(ctx context.Context, links []string) []match.Record
}

// Monitor runs the polling pipeline.
type Monitor struct {
	harvester Harvester
	store     sink.Sink
	alerts    alert.Notifier
	interval  time.Duration
	cooldown  time.Duration
	now       func() time.Time
}

// New creates a monitor polling at the given interval.
func New(h Harvester, store sink.Sink, alerts alert.Notifier, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		harvester: h,
		store:     store,
		alerts:    alerts,
		interval:  interval,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. A failed cycle leaves the state untouched
// and waits out the cooldown instead of the regular interval.
func (m *Monitor) Run(ctx context.Context) {
	logger.Info("monitor started", logger.Fields{"interval": m.interval.String()})
	m.alerts.Notify("🚀 Match mirror started.")

	state := CycleState{}
	for {
		wait := m.interval
		next, err := m.cycle(ctx, state)
		if err != nil {
			logger.Error("cycle failed", logger.Fields{"cooldown": m.cooldown.String()}, err)
			m.alerts.Notify("🚨 Cycle error: " + err.Error())
			wait = m.cooldown
		} else {
			state = next
		}
		logger.IncrCounter("monitor.cycles")

		select {
		case <-ctx.Done():
			logger.Info("monitor stopped", logger.Fields(logger.MetricsSnapshot()))
			return
		case <-time.After(wait):
		}
	}
}

// RunOnce executes a single cycle against fresh state, publishing
// unconditionally on content. Used by the --once CLI mode.
func (m *Monitor) RunOnce(ctx context.Context) error {
	_, err := m.cycle(ctx, CycleState{})
	return err
}

// cycle runs one full harvest-and-publish pass. A panic anywhere inside is
// converted into a cycle error so the loop survives unexpected document
// shapes and sink client bugs.
func (m *Monitor) cycle(ctx context.Context, state CycleState) (next CycleState, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = state
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	links, err := m.harvester.ResolveListing(ctx)
	if err != nil {
		// The site being down or blocking is routine; the cycle degrades to
		// an empty candidate set instead of failing.
		logger.Warn("listing resolution failed", logger.Fields{"error": err.Error()})
		m.alerts.Notify("⚠️ Scraping error (site might be down/blocked): " + err.Error())
		return state, nil
	}
	logger.Info("listing resolved", logger.Fields{"matches": len(links)})

	start := m.now()
	records := m.harvester.Harvest(ctx, links)
	logger.RecordTiming("harvest", m.now().Sub(start))

	snap := match.BuildSnapshot(records)
	if len(snap) == 0 {
		logger.Info("empty snapshot, skipping cycle", nil)
		return state, nil
	}

	fingerprint := snap.Fingerprint()
	today := m.localDay()
	newDay := today.After(state.PublishedDay)

	if fingerprint == state.Fingerprint && !newDay {
		logger.Info("no changes", logger.Fields{"matches": len(snap)})
		return state, nil
	}

	if newDay {
		deleted, purgeErr := m.store.Purge(ctx)
		if purgeErr != nil {
			// Stale leftovers are tolerable; the upsert below overwrites by
			// key and the alert gets an operator to look.
			logger.Error("purge failed", nil, purgeErr)
			m.alerts.Notify("❌ Error clearing matches: " + purgeErr.Error())
		} else {
			logger.Info("purged sink for new day", logger.Fields{"deleted": deleted, "day": today.Format("2006-01-02")})
			m.alerts.Notify(fmt.Sprintf("🧹 Cleared %d old matches for the new day.", deleted))
		}
	}

	if err := m.store.Upsert(ctx, snap); err != nil {
		logger.Error("sink update failed", logger.Fields{"matches": len(snap)}, err)
		m.alerts.Notify("❌ Sink update error: " + err.Error())
		// State stays put so the next cycle retries the full publish.
		return state, nil
	}

	logger.Info("snapshot published", logger.Fields{"matches": len(snap), "new_day": newDay})
	logger.IncrCounter("monitor.publishes")
	return CycleState{Fingerprint: fingerprint, PublishedDay: today}, nil
}

// localDay returns midnight of the current calendar day in the fixed local
// offset the upstream schedule is judged in.
func (m *Monitor) localDay() time.Time {
	t := m.now().UTC().Add(localOffset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
