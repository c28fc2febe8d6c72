package match

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is the ordered result of one full pipeline run. It is built once
// per cycle and never mutated; the next cycle supersedes it wholesale.
type Snapshot []Record

// BuildSnapshot orders records by championship name, keeping the original
// discovery order for ties. Records without a championship sort first as the
// empty string.
func BuildSnapshot(records []Record) Snapshot {
	snap := make(Snapshot, len(records))
	copy(snap, records)
	sort.SliceStable(snap, func(i, j int) bool {
		return snap[i].Championship() < snap[j].Championship()
	})
	return snap
}

// Fingerprint returns a deterministic SHA1 content hash of the snapshot.
// encoding/json serializes struct fields in declaration order and map keys
// sorted, so identical content always yields an identical fingerprint.
func (s Snapshot) Fingerprint() string {
	data, err := json.Marshal(s)
	if err != nil {
		// Record contains only strings, maps, and slices; Marshal cannot fail.
		return ""
	}
	return fmt.Sprintf("%x", sha1.Sum(data))
}
