// Package scheduler implements the single-threaded cooperative VM loop
// (spec §4.6): it is the sole mutator of VM state, draining operator
// commands between bounded batches of bytecode steps and collecting the
// arena on a fixed cadence.
package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/logx"
	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/store"
	"github.com/jangala-dev/nb-esp32-firmware/internal/vmshim"
)

// STEP_BATCH_SIZE, STEPS_BETWEEN_GC, YIELDS_BEFORE_IDLE_SLEEP and the idle
// sleep duration are the literal constants of spec §4.6/§9.
const (
	StepBatchSize        = 128
	StepsBetweenGC        = 1024
	YieldsBeforeIdleSleep = 256
)

const idleSleepDuration = time.Millisecond

// idleSleeper is the hysteresis around idleness (spec §9): it only sleeps
// once YieldsBeforeIdleSleep consecutive non-productive steps have been
// observed, so short idle bursts inside an otherwise busy guest program
// never pay the sleep cost.
type idleSleeper struct {
	consecutive int
	sleepFn     func(time.Duration)
}

func newIdleSleeper() *idleSleeper {
	return &idleSleeper{sleepFn: time.Sleep}
}

func (s *idleSleeper) consume(productive bool) {
	if productive {
		s.consecutive = 0
		return
	}
	s.consecutive++
	if s.consecutive > YieldsBeforeIdleSleep {
		s.sleepFn(idleSleepDuration)
	}
}

// Scheduler owns the running Env (spec §3: "The compiled artifact plus a
// mutable Project value together form the arena-rooted Env") and the
// RuntimeContext command/ring plumbing.
type Scheduler struct {
	parser  vmshim.Parser
	project vmshim.Project
	store   *store.Store
	rc      *runtime.RuntimeContext

	idle         *idleSleeper
	stepsSinceGC int
}

// New loads the stored project (or vmshim.EmptyProjectXML) and compiles it
// into the initial Env. A boot-time compile failure falls back to the
// empty project, per spec §7 ("at boot, the empty project is substituted").
func New(parser vmshim.Parser, st *store.Store, rc *runtime.RuntimeContext) (*Scheduler, error) {
	s := &Scheduler{parser: parser, store: st, rc: rc, idle: newIdleSleeper()}

	xml, ok, err := st.Project.Get()
	if err != nil {
		return nil, err
	}
	if !ok || xml == "" {
		xml = vmshim.EmptyProjectXML
	}

	project, perr := parser.Parse(xml)
	if perr != nil {
		project, perr = parser.Parse(vmshim.EmptyProjectXML)
		if perr != nil {
			return nil, perr
		}
	}
	s.project = project
	return s, nil
}

// Tick runs one full iteration of the loop body in spec §4.6's pseudocode:
// drain at most one ServerCommand, then (if running) one batch of up to
// StepBatchSize VM steps, then collect if the GC cadence has elapsed.
func (s *Scheduler) Tick() {
	s.drainOneCommand()

	if !s.rc.Running() {
		return
	}

	for i := 0; i < StepBatchSize; i++ {
		res := s.project.Step()
		if res.Error != nil {
			s.reportStepError(res.Error)
		}
		s.idle.consume(res.Productive)
		s.stepsSinceGC++
	}

	if s.stepsSinceGC > StepsBetweenGC {
		s.project.Collect()
		s.stepsSinceGC = 0
	}
}

// Run drives Tick forever until ctx is cancelled. It is the VM task of
// spec §5: the only task allowed to block, on either the idle sleep or the
// RuntimeContext mutex.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			s.Tick()
		}
	}
}

func (s *Scheduler) drainOneCommand() {
	cmd, ok := s.rc.DrainOne()
	if !ok {
		return
	}
	switch cmd.Kind {
	case runtime.SetProject:
		s.applySetProject(cmd.ProjectXML)
	case runtime.InputStart:
		s.project.Input(vmshim.InputStart)
		// Input::Start always forces running=true (spec §9 Open Questions:
		// resolved in favor of the variant that does so, since the control
		// plane has no other path to resume a paused device after a fresh
		// project load).
		s.rc.SetRunning(true)
	case runtime.InputStop:
		s.project.Input(vmshim.InputStop)
	}
}

// applySetProject implements spec §7's ProjectCompile recovery: a failed
// live replace keeps the old project and leaves a trace in the output
// ring (spec E4); success swaps the Env and persists the new XML.
func (s *Scheduler) applySetProject(xml string) {
	project, err := s.parser.Parse(xml)
	if err != nil {
		s.rc.PushOutput(">>> failed to load project: " + err.Error())
		logx.Warnf("keeping old project: %v", err)
		return
	}
	s.project = project
	if err := s.store.Project.Set(xml); err != nil {
		logx.Errorf("failed to persist project: %v", err)
	}
}

// reportStepError implements spec §4.6's error-reporting lines: a
// human-readable trace to the output ring and a single JSON object per
// line to the errors ring (spec §7: GuestVM runtime error is surfaced, not
// fatal).
func (s *Scheduler) reportStepError(e *vmshim.ErrorSummary) {
	s.rc.PushOutput("\n>>> error " + e.Cause + "\n")
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.rc.PushError(string(line))
}
