package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rbenali/matchmirror/internal/match"
)

// fakeHarvester returns fixed records, optionally failing the listing.
type fakeHarvester struct {
	records    []match.Record
	listingErr error
}

func (f *fakeHarvester) ResolveListing(ctx context.Context) ([]string, error) {
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	links := make([]string, len(f.records))
	for i, r := range f.records {
		links[i] = r.URL
	}
	return links, nil
}

func (f *fakeHarvester) Harvest(ctx context.Context, links []string) []match.Record {
	return f.records
}

// fakeSink records operations in order.
type fakeSink struct {
	mu        sync.Mutex
	ops       []string
	upserted  []match.Snapshot
	upsertErr error
	purgeErr  error
}

func (f *fakeSink) Upsert(ctx context.Context, snap match.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.ops = append(f.ops, "upsert")
	f.upserted = append(f.upserted, snap)
	return nil
}

func (f *fakeSink) Purge(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.ops = append(f.ops, "purge")
	return 3, nil
}

// recordingNotifier keeps every alert text.
type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingNotifier) Notify(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func testRecords(score string) []match.Record {
	r1 := match.NewRecord("https://www.ysscores.com/ar/match/1")
	r1.ID = "1"
	r1.Info[match.InfoChampionship] = "ب"
	r1.Info[match.InfoScore] = score
	r1.Info[match.InfoStatus] = match.StatusNotStarted

	r2 := match.NewRecord("https://www.ysscores.com/ar/match/2")
	r2.ID = "2"
	r2.Info[match.InfoChampionship] = "أ"
	r2.Info[match.InfoScore] = score
	r2.Info[match.InfoStatus] = match.StatusNotStarted

	return []match.Record{r1, r2}
}

func testMonitor(h Harvester, s *fakeSink, n *recordingNotifier, at time.Time) *Monitor {
	m := New(h, s, n, time.Minute)
	m.now = func() time.Time { return at }
	return m
}

func TestCycleFirstPublishPurgesAndUpserts(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: testRecords(match.ScoreUnknown)}, s, n, at)

	state, err := m.cycle(context.Background(), CycleState{})
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// The zero PublishedDay predates any real day, so the first publish
	// fires the day-boundary override: purge first, then upsert.
	if len(s.ops) != 2 || s.ops[0] != "purge" || s.ops[1] != "upsert" {
		t.Fatalf("expected [purge upsert], got %v", s.ops)
	}
	if state.Fingerprint == "" {
		t.Error("expected fingerprint to be recorded after publish")
	}
	if state.PublishedDay.IsZero() {
		t.Error("expected published day to be recorded after publish")
	}

	// Snapshot must arrive sorted by championship.
	if got := s.upserted[0]; got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("expected championship-ordered snapshot, got IDs %s,%s", got[0].ID, got[1].ID)
	}
}

func TestCycleUnchangedContentSameDaySkips(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: testRecords(match.ScoreUnknown)}, s, n, at)

	state, err := m.cycle(context.Background(), CycleState{})
	if err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	opsAfterFirst := len(s.ops)

	next, err := m.cycle(context.Background(), state)
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	if len(s.ops) != opsAfterFirst {
		t.Errorf("identical same-day cycle must not touch the sink, got %v", s.ops)
	}
	if next != state {
		t.Error("state must be unchanged when nothing was published")
	}
}

func TestCycleContentChangePublishesWithoutPurge(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	h := &fakeHarvester{records: testRecords(match.ScoreUnknown)}
	m := testMonitor(h, s, n, at)

	state, err := m.cycle(context.Background(), CycleState{})
	if err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	h.records = testRecords("1 - 0")
	s.ops = nil
	next, err := m.cycle(context.Background(), state)
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	if len(s.ops) != 1 || s.ops[0] != "upsert" {
		t.Fatalf("expected content change to upsert without purge, got %v", s.ops)
	}
	if next.Fingerprint == state.Fingerprint {
		t.Error("expected fingerprint to advance with changed content")
	}
	if !next.PublishedDay.Equal(state.PublishedDay) {
		t.Error("published day must not move within the same day")
	}
}

func TestCycleDayBoundaryRepublishesIdenticalContent(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: testRecords(match.ScoreUnknown)}, s, n, at)

	state, err := m.cycle(context.Background(), CycleState{})
	if err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// Advance past local midnight (UTC+1): 23:30 UTC is 00:30 next day.
	m.now = func() time.Time { return time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC) }
	s.ops = nil
	next, err := m.cycle(context.Background(), state)
	if err != nil {
		t.Fatalf("day-boundary cycle failed: %v", err)
	}

	if len(s.ops) != 2 || s.ops[0] != "purge" || s.ops[1] != "upsert" {
		t.Fatalf("expected purge then upsert on day boundary, got %v", s.ops)
	}
	if next.Fingerprint != state.Fingerprint {
		t.Error("identical content should keep the same fingerprint")
	}
	if !next.PublishedDay.After(state.PublishedDay) {
		t.Error("published day must advance across the boundary")
	}
}

func TestCycleEmptySnapshotIsNoOp(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: nil}, s, n, at)

	prior := CycleState{Fingerprint: "abc", PublishedDay: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)}
	next, err := m.cycle(context.Background(), prior)
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	if len(s.ops) != 0 {
		t.Errorf("empty snapshot must not touch the sink, got %v", s.ops)
	}
	if next != prior {
		t.Error("empty snapshot must not clear or advance state")
	}
}

func TestCycleListingFailureAlertsAndContinues(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{listingErr: errors.New("blocked")}, s, n, at)

	prior := CycleState{Fingerprint: "abc", PublishedDay: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}
	next, err := m.cycle(context.Background(), prior)
	if err != nil {
		t.Fatalf("listing failure must not fail the cycle: %v", err)
	}
	if next != prior {
		t.Error("listing failure must not advance state")
	}
	if len(n.texts) == 0 {
		t.Error("expected an alert for the listing failure")
	}
	if len(s.ops) != 0 {
		t.Errorf("listing failure must not touch the sink, got %v", s.ops)
	}
}

func TestCycleUpsertFailureKeepsState(t *testing.T) {
	s := &fakeSink{upsertErr: errors.New("batch 2 failed")}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: testRecords(match.ScoreUnknown)}, s, n, at)

	prior := CycleState{}
	next, err := m.cycle(context.Background(), prior)
	if err != nil {
		t.Fatalf("upsert failure is handled in-cycle, got error: %v", err)
	}

	if next != prior {
		t.Error("failed publish must not advance fingerprint or day")
	}
	found := false
	for _, text := range n.texts {
		if strings.Contains(text, "Sink update error") {
			found = true
		}
	}
	if !found {
		t.Error("expected an alert for the sink failure")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&fakeHarvester{records: nil}, s, n, at)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestCyclePanicBecomesError(t *testing.T) {
	s := &fakeSink{}
	n := &recordingNotifier{}
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	m := testMonitor(&panickingHarvester{}, s, n, at)

	prior := CycleState{Fingerprint: "abc"}
	next, err := m.cycle(context.Background(), prior)
	if err == nil {
		t.Fatal("expected a cycle error from the panic")
	}
	if next != prior {
		t.Error("panicked cycle must not advance state")
	}
}

type panickingHarvester struct{}

func (panickingHarvester) ResolveListing(ctx context.Context) ([]string, error) {
	return []string{"/ar/match/1"}, nil
}

func (panickingHarvester) Harvest(ctx context.Context, links []string) []match.Record {
	panic("unexpected document shape")
}
