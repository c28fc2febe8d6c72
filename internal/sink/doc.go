// Package sink provides the persistent stores snapshots are published to.
//
// All sinks share the same contract: an idempotent merge-write of every match
// record keyed by its ID, committed in batches below the store's atomic
// operation ceiling, and a purge that clears the collection at each calendar
// day boundary. Three variants are available: a local JSON file, a GitHub
// Gist (version-controlled file), and a Postgres table.
package sink
