// Package runtime implements RuntimeContext (spec §3/§4.3): the state the
// scheduler loop and the control-plane HTTP handlers share -- a running
// flag, bounded line-granular output/error rings, and the command FIFO.
package runtime

import "strings"

// LineRing is a bounded, line-granular circular buffer (spec §3:
// "BoundedLineRing (cap 32 KiB, line-granular)"). Pushing a string
// containing '\n' splits into separate line entries; once the cumulative
// byte size would exceed cap, whole lines are evicted from the front until
// it fits again (a single line longer than cap is itself dropped) -- the
// buffer never contains a partial line (testable property #8).
type LineRing struct {
	cap   int
	lines []string
	size  int // sum of len(line)+1 for every line currently held
}

func NewLineRing(capBytes int) *LineRing {
	return &LineRing{cap: capBytes}
}

// Push appends s, split on '\n' into whole lines. A trailing fragment with
// no terminating newline is still buffered as its own line (it is complete
// as far as the ring is concerned; spec §3 doesn't require Push itself to
// assemble partial writes across calls).
func (r *LineRing) Push(s string) {
	for _, line := range strings.Split(s, "\n") {
		r.pushLine(line)
	}
}

func (r *LineRing) pushLine(line string) {
	r.lines = append(r.lines, line)
	r.size += len(line) + 1
	for r.size > r.cap && len(r.lines) > 0 {
		evicted := r.lines[0]
		r.lines = r.lines[1:]
		r.size -= len(evicted) + 1
	}
}

// Snapshot returns every buffered line, newline-joined with a trailing
// newline if there is at least one line (matching the scheduler's literal
// `"line1\nline2\nline3\n"` output shape, spec E5).
func (r *LineRing) Snapshot() string {
	if len(r.lines) == 0 {
		return ""
	}
	return strings.Join(r.lines, "\n") + "\n"
}

// SnapshotLines returns the buffered lines as a slice, used by the errors
// ring where each line is parsed as its own JSON object.
func (r *LineRing) SnapshotLines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Clear empties the ring.
func (r *LineRing) Clear() {
	r.lines = nil
	r.size = 0
}

// PullAndClear atomically snapshots and clears -- the caller is expected to
// hold whatever mutex guards RuntimeContext around this call (spec E5:
// "Pull endpoint atomicity").
func (r *LineRing) PullAndClear() string {
	s := r.Snapshot()
	r.Clear()
	return s
}
