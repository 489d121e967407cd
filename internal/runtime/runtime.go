package runtime

import "sync"

// ServerCommandKind distinguishes the two shapes of ServerCommand (spec §3).
type ServerCommandKind int

const (
	SetProject ServerCommandKind = iota
	InputStart
	InputStop
)

// ServerCommand is one entry of the command FIFO the control-plane handlers
// push into and the scheduler drains (spec §3, §4.6).
type ServerCommand struct {
	Kind       ServerCommandKind
	ProjectXML string // valid when Kind == SetProject
}

// RuntimeContext is the state shared between the scheduler loop and the
// control-plane HTTP handlers (spec §3): the pause flag, the two output
// rings, and the inbound command FIFO. Every accessor takes the same mutex,
// matching spec §9's "all accesses under one mutex; critical sections are
// O(1) or O(buffer)".
type RuntimeContext struct {
	mu       sync.Mutex
	running  bool
	output   *LineRing
	errors   *LineRing
	commands []ServerCommand
}

const ringCapBytes = 32 * 1024

func New() *RuntimeContext {
	return &RuntimeContext{
		output: NewLineRing(ringCapBytes),
		errors: NewLineRing(ringCapBytes),
	}
}

func (rc *RuntimeContext) Running() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.running
}

func (rc *RuntimeContext) SetRunning(v bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.running = v
}

func (rc *RuntimeContext) TogglePaused() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.running = !rc.running
	return rc.running
}

// PushOutput appends a line to the output ring, called by the scheduler
// whenever the guest program prints.
func (rc *RuntimeContext) PushOutput(line string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.output.Push(line)
}

// PushError appends one JSON-object line to the error ring.
func (rc *RuntimeContext) PushError(jsonLine string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.errors.Push(jsonLine)
}

// PullSnapshot is the POST /pull primitive (spec §4.3, E5): it atomically
// reads and clears both rings alongside the running flag, under the single
// mutex, so a concurrent PushOutput/PushError from the scheduler can never
// land between the snapshot and the clear.
func (rc *RuntimeContext) PullSnapshot() (running bool, output string, errs []string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	running = rc.running
	output = rc.output.PullAndClear()
	errs = rc.errors.SnapshotLines()
	rc.errors.Clear()
	// A ring whose only line is empty (e.g. after PushError("")) holds no
	// error object; normalize it to nil so callers see a 0-length slice.
	if len(errs) == 1 && errs[0] == "" {
		errs = nil
	}
	return running, output, errs
}

// Enqueue appends a ServerCommand to the FIFO (spec property #5: enqueue
// order from concurrent handler calls is preserved).
func (rc *RuntimeContext) Enqueue(cmd ServerCommand) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.commands = append(rc.commands, cmd)
}

// DrainOne pops the oldest ServerCommand, if any (spec §4.6: "drain one
// ServerCommand (if any)" per scheduler tick).
func (rc *RuntimeContext) DrainOne() (ServerCommand, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if len(rc.commands) == 0 {
		return ServerCommand{}, false
	}
	cmd := rc.commands[0]
	rc.commands = rc.commands[1:]
	return cmd, true
}
