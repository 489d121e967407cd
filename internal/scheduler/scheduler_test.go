package scheduler

import (
	"testing"
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/store"
	"github.com/jangala-dev/nb-esp32-firmware/internal/vmshim"
)

func newTestScheduler(t *testing.T) (*Scheduler, *runtime.RuntimeContext, *vmshim.FakeParser) {
	t.Helper()
	st, err := store.New(store.NewMemBackend())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	rc := runtime.New()
	parser := &vmshim.FakeParser{FailXML: "<broken>"}
	sched, err := New(parser, st, rc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sched, rc, parser
}

func TestTickSkipsStepsWhilePaused(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	fp := sched.project.(*vmshim.FakeProject)
	fp.Script = []vmshim.StepResult{{Productive: true}}

	rc.SetRunning(false)
	sched.Tick()

	if fp.Pos != 0 {
		t.Fatalf("Step should not have been called while paused")
	}
}

func TestTickRunsStepBatchWhileRunning(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	fp := sched.project.(*vmshim.FakeProject)
	fp.Script = make([]vmshim.StepResult, StepBatchSize)
	for i := range fp.Script {
		fp.Script[i] = vmshim.StepResult{Productive: true}
	}

	rc.SetRunning(true)
	sched.Tick()

	if fp.Pos != StepBatchSize {
		t.Fatalf("steps consumed = %d, want %d", fp.Pos, StepBatchSize)
	}
}

func TestCollectAfterGCCadence(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	fp := sched.project.(*vmshim.FakeProject)
	fp.Script = make([]vmshim.StepResult, StepBatchSize)
	for i := range fp.Script {
		fp.Script[i] = vmshim.StepResult{Productive: true}
	}
	rc.SetRunning(true)

	ticks := StepsBetweenGC/StepBatchSize + 1
	for i := 0; i < ticks; i++ {
		fp.Pos = 0 // FakeProject has no Reset; re-run same script each tick
		sched.Tick()
	}

	if fp.Collects != 1 {
		t.Fatalf("Collects = %d, want exactly 1 after crossing the GC cadence", fp.Collects)
	}
}

// E4: invalid project XML leaves the running project intact and logs a
// failure line.
func TestSetProjectInvalidXMLKeepsOldProject(t *testing.T) {
	sched, rc, parser := newTestScheduler(t)
	oldProject := sched.project

	rc.Enqueue(runtime.ServerCommand{Kind: runtime.SetProject, ProjectXML: parser.FailXML})
	sched.Tick()

	if sched.project != oldProject {
		t.Fatalf("project was replaced despite invalid XML")
	}
	_, output, _ := rc.PullSnapshot()
	if len(output) == 0 || output[:len(">>> failed to load project")] != ">>> failed to load project" {
		t.Fatalf("output = %q, want it to start with %q", output, ">>> failed to load project")
	}
}

func TestSetProjectValidXMLSwapsAndPersists(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	st := sched.store

	rc.Enqueue(runtime.ServerCommand{Kind: runtime.SetProject, ProjectXML: "<room><role></role></room>"})
	sched.Tick()

	if sched.project == nil {
		t.Fatalf("expected a project after successful replace")
	}
	stored, ok, err := st.Project.Get()
	if err != nil || !ok || stored != "<room><role></role></room>" {
		t.Fatalf("stored project = (%q, %v, %v), want the new XML persisted", stored, ok, err)
	}
}

func TestInputStartForcesRunning(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	rc.SetRunning(false)
	rc.Enqueue(runtime.ServerCommand{Kind: runtime.InputStart})
	sched.Tick()
	if !rc.Running() {
		t.Fatalf("Input::Start should force running=true")
	}
}

func TestStepErrorPushesOutputAndErrorLines(t *testing.T) {
	sched, rc, _ := newTestScheduler(t)
	fp := sched.project.(*vmshim.FakeProject)
	fp.Script = []vmshim.StepResult{
		{Error: &vmshim.ErrorSummary{Cause: "division by zero", Proc: "main"}},
	}
	rc.SetRunning(true)
	sched.Tick()

	_, output, errs := rc.PullSnapshot()
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one entry", errs)
	}
	if output == "" {
		t.Fatalf("expected an output ring line for the step error")
	}
}

func TestIdleSleeperHysteresis(t *testing.T) {
	var slept int
	s := newIdleSleeper()
	s.sleepFn = func(time.Duration) { slept++ }
	for i := 0; i < YieldsBeforeIdleSleep; i++ {
		s.consume(false)
	}
	if slept != 0 {
		t.Fatalf("slept = %d before crossing the threshold, want 0", slept)
	}
	s.consume(false)
	if slept != 1 {
		t.Fatalf("slept = %d after crossing the threshold, want 1", slept)
	}
	s.consume(true)
	if s.consecutive != 0 {
		t.Fatalf("a productive step must reset the hysteresis counter")
	}
}
