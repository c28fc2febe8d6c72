// Package match provides the data model for harvested football matches.
//
// The package handles match representation, snapshot ordering, and change detection
// through a deterministic SHA1 content fingerprint computed over a canonical JSON
// serialization, enabling reliable comparison across poll cycles.
package match
