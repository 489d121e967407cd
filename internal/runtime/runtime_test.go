package runtime

import "testing"

func TestLineRingEvictsWholeLinesOnly(t *testing.T) {
	r := NewLineRing(10)
	r.Push("aaaa")
	r.Push("bbbb")
	r.Push("cccc")
	snap := r.Snapshot()
	if snap == "" {
		t.Fatalf("expected at least one surviving line")
	}
	// every remaining line must be one of the pushed whole lines, never a
	// truncated fragment like "aa" or "bb".
	lines := r.SnapshotLines()
	for _, l := range lines {
		if l != "aaaa" && l != "bbbb" && l != "cccc" {
			t.Fatalf("ring holds a partial line: %q", l)
		}
	}
}

func TestLineRingSplitsOnNewline(t *testing.T) {
	r := NewLineRing(1024)
	r.Push("line1\nline2\nline3")
	got := r.SnapshotLines()
	want := []string{"line1", "line2", "line3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPullSnapshotAtomicClear(t *testing.T) {
	rc := New()
	rc.SetRunning(true)
	rc.PushOutput("line1")
	rc.PushOutput("line2")
	rc.PushOutput("line3")
	rc.PushError(`{"msg":"boom"}`)

	running, output, errs := rc.PullSnapshot()
	if !running {
		t.Fatalf("running = false, want true")
	}
	if output != "line1\nline2\nline3\n" {
		t.Fatalf("output = %q, want %q", output, "line1\nline2\nline3\n")
	}
	if len(errs) != 1 || errs[0] != `{"msg":"boom"}` {
		t.Fatalf("errs = %v, want one boom entry", errs)
	}

	// second pull immediately after must be empty (E5).
	_, output2, errs2 := rc.PullSnapshot()
	if output2 != "" || len(errs2) != 0 {
		t.Fatalf("second pull = (%q, %v), want empty", output2, errs2)
	}
}

func TestCommandFIFOOrdering(t *testing.T) {
	rc := New()
	rc.Enqueue(ServerCommand{Kind: InputStart})
	rc.Enqueue(ServerCommand{Kind: SetProject, ProjectXML: "<root/>"})
	rc.Enqueue(ServerCommand{Kind: InputStop})

	cmd, ok := rc.DrainOne()
	if !ok || cmd.Kind != InputStart {
		t.Fatalf("first drain = %v, want InputStart", cmd)
	}
	cmd, ok = rc.DrainOne()
	if !ok || cmd.Kind != SetProject || cmd.ProjectXML != "<root/>" {
		t.Fatalf("second drain = %v, want SetProject", cmd)
	}
	cmd, ok = rc.DrainOne()
	if !ok || cmd.Kind != InputStop {
		t.Fatalf("third drain = %v, want InputStop", cmd)
	}
	if _, ok := rc.DrainOne(); ok {
		t.Fatalf("expected FIFO to be empty")
	}
}

func TestTogglePaused(t *testing.T) {
	rc := New()
	if rc.Running() {
		t.Fatalf("new RuntimeContext should start paused")
	}
	if !rc.TogglePaused() {
		t.Fatalf("toggle should flip to running")
	}
	if rc.TogglePaused() {
		t.Fatalf("second toggle should flip back to paused")
	}
	rc.SetRunning(false)
	if rc.Running() {
		t.Fatalf("SetRunning(false) did not take effect")
	}
}
