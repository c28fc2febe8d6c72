package match

import "testing"

func rec(id, championship string) Record {
	r := NewRecord("https://example.com/ar/match/" + id)
	r.ID = id
	if championship != "" {
		r.Info[InfoChampionship] = championship
	}
	r.Info[InfoScore] = ScoreUnknown
	r.Info[InfoStatus] = StatusNotStarted
	return r
}

func TestBuildSnapshotOrdering(t *testing.T) {
	records := []Record{
		rec("1", "الدوري الإسباني"),
		rec("2", ""),
		rec("3", "الدوري الإنجليزي"),
		rec("4", "الدوري الإسباني"),
	}

	snap := BuildSnapshot(records)

	wantIDs := []string{"2", "1", "4", "3"}
	if len(snap) != len(wantIDs) {
		t.Fatalf("expected %d records, got %d", len(wantIDs), len(snap))
	}
	for i, want := range wantIDs {
		if snap[i].ID != want {
			t.Errorf("position %d: expected ID %s, got %s", i, want, snap[i].ID)
		}
	}

	// The input slice must not be reordered.
	if records[0].ID != "1" || records[3].ID != "4" {
		t.Error("BuildSnapshot mutated its input")
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	a := BuildSnapshot([]Record{rec("10", "A"), rec("11", "B")})
	b := BuildSnapshot([]Record{rec("10", "A"), rec("11", "B")})

	if a.Fingerprint() == "" {
		t.Fatal("fingerprint should not be empty")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical snapshots must have identical fingerprints")
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Error("fingerprint must be stable across calls")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := BuildSnapshot([]Record{rec("10", "A"), rec("11", "B")})

	changed := BuildSnapshot([]Record{rec("10", "A"), rec("11", "B")})
	changed[1].Info[InfoScore] = "1 - 0"

	if base.Fingerprint() == changed.Fingerprint() {
		t.Error("a single field change must alter the fingerprint")
	}

	withChannel := BuildSnapshot([]Record{rec("10", "A"), rec("11", "B")})
	withChannel[0].Channels = append(withChannel[0].Channels, Channel{
		Channel:     "beIN Sports",
		Commentator: Unspecified,
	})
	if base.Fingerprint() == withChannel.Fingerprint() {
		t.Error("adding a channel must alter the fingerprint")
	}
}
