// Package ledger ties a canvas image to its command history.
//
// VersionedImage is the only writer of its image. Every command goes through
// Apply; commands that change nothing are absorbed and never reach the log,
// so the version counts real edits. With a full log any earlier version can
// be restored and diffed against the current state. With a null log only the
// counter survives and Diff always misses.
package ledger
