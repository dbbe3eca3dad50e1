package history

import (
	"cmp"
	"slices"
)

// Version counts state-changing commands. Version 0 is the initial state.
type Version uint64

// DefaultSnapshotInterval is how many commands a FullLog records between
// snapshots.
const DefaultSnapshotInterval = 1000

// Replayable is a state that commands of type C can be replayed onto.
type Replayable[S any, C any] interface {
	// Apply mutates the state and reports whether it changed.
	Apply(cmd C) bool
	// Clone returns an independent copy.
	Clone() S
}

// Log is the history of a state. The only implementations are NullLog and
// FullLog.
type Log[S Replayable[S, C], C any] interface {
	// LatestVersion is the number of commands appended so far.
	LatestVersion() Version
	// AppendAppliedCommand records cmd, which turned the previous state into
	// state. Callers only append commands that changed the state.
	AppendAppliedCommand(cmd C, state S)
	// RestoreState rebuilds the state as of version v. ok is false when the
	// log cannot reconstruct v.
	RestoreState(v Version) (state S, ok bool)
	// CommandsSince returns the commands appended after version v.
	CommandsSince(v Version) []C
	// SnapshotCount is the number of stored snapshots.
	SnapshotCount() int

	sealed()
}

// NullLog discards commands and only counts them.
type NullLog[S Replayable[S, C], C any] struct {
	latest Version
}

// NewNullLog returns an empty NullLog.
func NewNullLog[S Replayable[S, C], C any]() *NullLog[S, C] {
	return &NullLog[S, C]{}
}

func (l *NullLog[S, C]) LatestVersion() Version { return l.latest }

func (l *NullLog[S, C]) AppendAppliedCommand(C, S) { l.latest++ }

// RestoreState always misses; a NullLog keeps no history.
func (l *NullLog[S, C]) RestoreState(Version) (S, bool) {
	var zero S
	return zero, false
}

func (l *NullLog[S, C]) CommandsSince(Version) []C { return nil }

func (l *NullLog[S, C]) SnapshotCount() int { return 0 }

func (l *NullLog[S, C]) sealed() {}

type snapshot[S any] struct {
	version Version
	state   S
}

// FullLog keeps every command and periodic snapshots of the state.
type FullLog[S Replayable[S, C], C any] struct {
	interval  int
	commands  []C
	snapshots []snapshot[S]
}

// NewFullLog returns a log whose version 0 is a copy of initial. An interval
// below 1 selects DefaultSnapshotInterval.
func NewFullLog[S Replayable[S, C], C any](initial S, interval int) *FullLog[S, C] {
	if interval < 1 {
		interval = DefaultSnapshotInterval
	}
	return &FullLog[S, C]{
		interval:  interval,
		snapshots: []snapshot[S]{{version: 0, state: initial.Clone()}},
	}
}

func (l *FullLog[S, C]) LatestVersion() Version {
	return Version(len(l.commands))
}

// AppendAppliedCommand stores cmd and, when the new version is a multiple of
// the snapshot interval, a copy of state.
func (l *FullLog[S, C]) AppendAppliedCommand(cmd C, state S) {
	l.commands = append(l.commands, cmd)
	if len(l.commands)%l.interval == 0 {
		l.snapshots = append(l.snapshots, snapshot[S]{
			version: l.LatestVersion(),
			state:   state.Clone(),
		})
	}
}

// RestoreState clones the nearest snapshot at or before v and replays the
// commands between it and v.
func (l *FullLog[S, C]) RestoreState(v Version) (S, bool) {
	var zero S
	if v > l.LatestVersion() {
		return zero, false
	}
	i, found := slices.BinarySearchFunc(l.snapshots, v, func(s snapshot[S], v Version) int {
		return cmp.Compare(s.version, v)
	})
	if found {
		return l.snapshots[i].state.Clone(), true
	}
	// snapshots[0] is version 0, so i >= 1 here.
	snap := l.snapshots[i-1]
	state := snap.state.Clone()
	for _, cmd := range l.commands[snap.version:v] {
		state.Apply(cmd)
	}
	return state, true
}

// CommandsSince returns the commands after version v. The slice shares the
// log's storage and must not be modified.
func (l *FullLog[S, C]) CommandsSince(v Version) []C {
	if v >= l.LatestVersion() {
		return nil
	}
	return l.commands[v:len(l.commands):len(l.commands)]
}

func (l *FullLog[S, C]) SnapshotCount() int {
	return len(l.snapshots)
}

func (l *FullLog[S, C]) sealed() {}
