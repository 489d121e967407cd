package facade

import (
	"testing"

	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/upstream"
)

func TestDefaultCommandHandlerPrintsToOutputRing(t *testing.T) {
	rc := runtime.New()
	f := New(1, upstream.RPCContext{}, nil, upstream.NewReplyTable(), nil, rc)

	key := f.PerformCommand(Command{Kind: CommandPrint, Entity: "stage", Value: "hello"})
	status, _, errMsg := key.Poll()
	if status != Completed || errMsg != "" {
		t.Fatalf("Poll = (%v, %q), want (Completed, \"\")", status, errMsg)
	}

	_, output, _ := rc.PullSnapshot()
	if output != "stage > hello\n" {
		t.Fatalf("output ring = %q, want %q", output, "stage > hello\n")
	}
}

func TestPerformRequestUnsupportedKindCompletesWithError(t *testing.T) {
	f := New(1, upstream.RPCContext{}, nil, upstream.NewReplyTable(), nil, nil)
	f.SetRequestHandler(func(req Request, key *AsyncKey) bool { return false })

	key := f.PerformRequest(Request{Kind: RequestRPC})
	status, _, errMsg := key.Poll()
	if status != Completed || errMsg == "" {
		t.Fatalf("Poll = (%v, %q), want Completed with a non-empty error", status, errMsg)
	}
}

func TestAsyncKeyCompletesOnce(t *testing.T) {
	key := newAsyncKey()
	key.Complete("first", "")
	key.Complete("second", "") // ignored, already completed

	status, value, _ := key.Poll()
	if status != Completed || value != "first" {
		t.Fatalf("Poll = (%v, %v), want (Completed, first)", status, value)
	}
	status, _, _ = key.Poll()
	if status != Consumed {
		t.Fatalf("second Poll = %v, want Consumed", status)
	}
}

func TestSendMessageWithoutReplyKey(t *testing.T) {
	f := New(1, upstream.RPCContext{}, nil, upstream.NewReplyTable(), nil, nil)
	key, has := f.SendMessage("ping", nil, nil, false)
	if key != "" || has {
		t.Fatalf("SendMessage(expectReply=false) = (%q, %v), want (\"\", false)", key, has)
	}
}
