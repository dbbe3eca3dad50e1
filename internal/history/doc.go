// Package history records applied commands and rebuilds earlier states.
//
// A Log answers two questions: what the latest version is, and what the
// state looked like at some earlier version. There are exactly two kinds of
// log. NullLog keeps only a version counter. FullLog keeps every command
// plus a full snapshot of the state every SnapshotInterval commands, so a
// restore costs one binary search plus at most SnapshotInterval-1 replays.
//
// Logs are append-only and are not safe for concurrent use.
package history
