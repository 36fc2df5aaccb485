// Package store keeps schema snapshots in SQLite.
//
// A snapshot is the canonical JSON of a schema definition, keyed by its
// content hash (value.Fingerprint under value.DomainSchema). Pushing the same
// definition twice is a no-op that returns the existing snapshot, so hashes
// are stable names for a schema across machines.
//
// Snapshots are listed newest first by insertion sequence, never by wall
// time. Each snapshot may carry a human label; the label of the latest push
// of a hash wins.
//
// # Connection settings
//
//   - journal_mode=WAL so readers never block on a push
//   - synchronous=NORMAL
//   - busy_timeout=5000 (milliseconds)
package store
