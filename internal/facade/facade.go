// Package facade implements the System Façade (spec §4.5): the surface the
// VM interacts with for everything outside its own bytecode -- randomness,
// time, outbound requests/commands, and message passing. Grounded on
// original_source/system.rs's EspSystem.
package facade

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/logx"
	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/upstream"
)

// AsyncStatus mirrors the three-state AsyncResult the VM polls (spec §4.5).
type AsyncStatus int

const (
	Pending AsyncStatus = iota
	Completed
	Consumed
)

// AsyncKey is a handle the scheduler polls until it completes exactly once
// (spec glossary: "AsyncKey").
type AsyncKey struct {
	mu     sync.Mutex
	status AsyncStatus
	value  any
	err    string
}

func newAsyncKey() *AsyncKey {
	return &AsyncKey{status: Pending}
}

// Complete fulfils the key. Completing twice is a bug in the caller (spec
// §4.2: "a reply key is consumed exactly once; leaving it unconsumed is a
// bug") and is ignored defensively rather than panicking the scheduler.
func (k *AsyncKey) Complete(value any, errMsg string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.status != Pending {
		return
	}
	k.status = Completed
	k.value = value
	k.err = errMsg
}

// Poll reports the key's status, consuming it on first observing Completed.
func (k *AsyncKey) Poll() (AsyncStatus, any, string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch k.status {
	case Completed:
		status, value, errMsg := Completed, k.value, k.err
		k.status = Consumed
		return status, value, errMsg
	default:
		return k.status, nil, ""
	}
}

// RequestKind distinguishes the requests perform_request accepts (spec
// §4.5 names only Rpc explicitly; Print is a Command, not a Request).
type RequestKind int

const (
	RequestRPC RequestKind = iota
)

// Request is what perform_request receives.
type Request struct {
	Kind    RequestKind
	Service string
	RPC     string
	Args    map[string]any
}

// CommandKind distinguishes the commands perform_command accepts.
type CommandKind int

const (
	CommandPrint CommandKind = iota
)

// Command is what perform_command receives.
type Command struct {
	Kind   CommandKind
	Entity string
	Value  string
}

// RequestHandler returns true (Handled, key will complete asynchronously)
// or false (UseDefault: caller synthesizes a NotSupported error).
type RequestHandler func(req Request, key *AsyncKey) bool

// CommandHandler is perform_command's configurable hook.
type CommandHandler func(cmd Command, key *AsyncKey) bool

// Facade is the concrete System implementation (spec §4.5).
type Facade struct {
	rng       *rand.Rand
	rngMu     sync.Mutex
	startTime time.Time
	realClock atomic.Bool

	replies *upstream.ReplyTable
	ws      *upstream.WSClient

	requestHandler RequestHandler
	commandHandler CommandHandler

	rpcClient *upstream.HTTPClient
	rpcCtx    upstream.RPCContext

	runtime *runtime.RuntimeContext
}

// New constructs a Facade seeded from platform entropy (spec §4.5: "seeded
// at construction from platform entropy"); seed is supplied by the caller
// since true entropy is a platform concern this package does not own.
func New(seed int64, rpcCtx upstream.RPCContext, rpcClient *upstream.HTTPClient, replies *upstream.ReplyTable, ws *upstream.WSClient, rc *runtime.RuntimeContext) *Facade {
	f := &Facade{
		rng:       rand.New(rand.NewSource(seed)),
		startTime: time.Now(),
		replies:   replies,
		ws:        ws,
		rpcClient: rpcClient,
		rpcCtx:    rpcCtx,
		runtime:   rc,
	}
	f.requestHandler = f.defaultRequestHandler
	f.commandHandler = f.defaultCommandHandler
	return f
}

// SetRequestHandler/SetCommandHandler let the scheduler install the
// project-aware wrappers around the built-in defaults.
func (f *Facade) SetRequestHandler(h RequestHandler) { f.requestHandler = h }
func (f *Facade) SetCommandHandler(h CommandHandler) { f.commandHandler = h }

// SetWSClient attaches the upstream connection once boot completes the
// websocket handshake (spec §4.4): a Facade constructed before Wi-Fi
// bring-up starts with ws == nil so SendMessage/SendReply/ReceiveMessage
// are safe no-ops until this is called.
func (f *Facade) SetWSClient(ws *upstream.WSClient) { f.ws = ws }

// Rand returns an integer in [0, n) (spec §4.5: "RNG... exposes rand(range)").
func (f *Facade) Rand(n int) int {
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return f.rng.Intn(n)
}

// TimeMs is monotonic time since Facade construction (spec §4.5).
func (f *Facade) TimeMs() int64 {
	return time.Since(f.startTime).Milliseconds()
}

// PerformRequest invokes the configured request handler; if it declines
// (UseDefault), the key completes immediately with a NotSupported error so
// the scheduler never has to special-case synchronous failure.
func (f *Facade) PerformRequest(req Request) *AsyncKey {
	key := newAsyncKey()
	if !f.requestHandler(req, key) {
		key.Complete(nil, "feature not supported")
	}
	return key
}

// PerformCommand is the Command analogue of PerformRequest.
func (f *Facade) PerformCommand(cmd Command) *AsyncKey {
	key := newAsyncKey()
	if !f.commandHandler(cmd, key) {
		key.Complete(nil, "feature not supported")
	}
	return key
}

// defaultRequestHandler implements perform_request's built-in Rpc case
// (spec §4.5): forward to the one-shot RPC path.
func (f *Facade) defaultRequestHandler(req Request, key *AsyncKey) bool {
	if req.Kind != RequestRPC {
		return false
	}
	go func() {
		result, err := upstream.CallRPC(f.rpcClient, f.rpcCtx, req.Service, req.RPC, req.Args, f.TimeMs())
		if err != nil {
			key.Complete(nil, err.Error())
			return
		}
		if result.IsImage {
			key.Complete(result.Image, "")
		} else {
			key.Complete(result.JSON, "")
		}
	}()
	return true
}

// defaultCommandHandler implements perform_command's built-in Print case
// (spec §4.5): "<entity> > <value>", tee'd to the stdout ring and the
// platform console.
func (f *Facade) defaultCommandHandler(cmd Command, key *AsyncKey) bool {
	if cmd.Kind != CommandPrint {
		return false
	}
	line := cmd.Entity + " > " + cmd.Value
	if f.runtime != nil {
		f.runtime.PushOutput(line)
	}
	logx.Infof("%s", line)
	key.Complete(nil, "")
	return true
}

// SendMessage is send_message (spec §4.4/§4.5). When expectReply is true it
// allocates a reply key up front so the caller can poll it immediately.
func (f *Facade) SendMessage(msgType string, values map[string]any, targets []string, expectReply bool) (replyKey string, hasReplyKey bool) {
	if !expectReply {
		if f.ws != nil {
			f.ws.Send(upstream.OutgoingMessage{Kind: upstream.Normal, MsgType: msgType, Values: values, Targets: targets})
		}
		return "", false
	}
	key := f.replies.Allocate()
	if f.ws != nil {
		f.ws.Send(upstream.OutgoingMessage{Kind: upstream.Blocking, MsgType: msgType, Values: values, Targets: targets, RequestID: key})
	}
	return key, true
}

// PollReply is poll_reply.
func (f *Facade) PollReply(key string) (status upstream.PollStatus, value any, hasEntry bool) {
	return f.replies.Poll(key)
}

// SendReply is send_reply: answers someone else's InternReplyKey.
func (f *Facade) SendReply(key upstream.InternReplyKey, value any) {
	if f.ws != nil {
		f.ws.Send(upstream.OutgoingMessage{Kind: upstream.Reply, ReplyKey: key, ReplyBody: value})
	}
}

// ReceiveMessage is receive_message: a non-blocking poll of the inbound
// queue.
func (f *Facade) ReceiveMessage() (upstream.IncomingMessage, bool) {
	if f.ws == nil {
		return upstream.IncomingMessage{}, false
	}
	return f.ws.Receive()
}

// EnableRealClock is called once SNTP has synced (spec §4.5: "real time
// flavor reads the real clock (initialized once via SNTP at boot when a
// client IP exists)").
func (f *Facade) EnableRealClock() {
	f.realClock.Store(true)
}

// RealTimeMs is the "real time" clock flavor: before SNTP sync it falls
// back to the monotonic clock, since there is no wall-clock truth yet.
func (f *Facade) RealTimeMs() int64 {
	if f.realClock.Load() {
		return time.Now().UnixMilli()
	}
	return f.TimeMs()
}
