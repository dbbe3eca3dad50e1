// Package journal persists canvas commands as line-delimited JSON.
//
// Each line holds one command in its wire form. Only commands that changed
// the image are written, so replaying a journal onto an empty image yields
// the same state and the same version count as the session that wrote it.
package journal
