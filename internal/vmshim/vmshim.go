// Package vmshim defines the contract the bytecode interpreter supplies
// (spec §1's explicit out-of-scope boundary): a Project that can be
// stepped, a parser that turns project XML into one, and the StepResult
// shape the scheduler loop inspects. The interpreter itself is someone
// else's problem; this package is the seam.
package vmshim

// EmptyProjectXML is the built-in project substituted at boot when no
// project is stored yet, and on a failed ProjectCompile at boot (spec §7:
// "at boot, the empty project is substituted"). It is deliberately the
// smallest well-formed role document the parser accepts: one untitled role
// with no scripts, no sprites beyond the stage.
const EmptyProjectXML = `<room name="untitled"><role name="myRole"><project name="myRole"><stage name="Stage"></stage><sprites></sprites></project><notes></notes></role></room>`

// Input is what the control plane injects into a running project (spec
// §3: "ServerCommand ∈ {SetProject(xml), Input(Start|Stop)}").
type Input int

const (
	InputStart Input = iota
	InputStop
)

// ErrorSummary is a structured record of a guest runtime error: a cause
// string plus the source location recovered from the compiled location
// map (spec glossary: "ErrorSummary").
type ErrorSummary struct {
	Cause    string
	Proc     string
	Location string
}

// StepResult is what Project.Step returns each iteration of the scheduler's
// step batch (spec §4.6).
type StepResult struct {
	// Productive is false when the step did nothing observable -- idle,
	// blocked on a pending async key, or waiting on a yield point -- and
	// feeds the idle_sleeper hysteresis.
	Productive bool
	Error      *ErrorSummary
}

// Project is the VM-facing object the scheduler owns: a compiled role plus
// its mutable state (spec §3: "The compiled artifact plus a mutable
// Project value together form the arena-rooted Env").
type Project interface {
	// Input delivers one control event (start or stop) into the running
	// project.
	Input(event Input)
	// Step advances the bytecode interpreter by one scheduler tick.
	Step() StepResult
	// Collect runs a reachability sweep over the project's arena-rooted
	// object graph (spec §9: "periodic reachability sweeps").
	Collect()
}

// Parser turns project XML into a Project ready to run. Compilation
// failure is reported as plain error text; the scheduler decides whether
// to keep the old project (live replace) or substitute EmptyProjectXML (at
// boot), per spec §7.
type Parser interface {
	Parse(xml string) (Project, error)
}
