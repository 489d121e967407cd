// Command firmware is the boot sequence (spec §1/§7): bring up the
// persistent store, materialize the peripheral layout, start the scheduler
// loop, and serve the front-of-device HTTP control plane. Grounded on the
// teacher's cmd/pico-hal-main/main.go (bus -> hal.Run -> event loop shape),
// adapted from the bus/pub-sub wiring to this module's store/broker/
// scheduler/control pipeline.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/control"
	"github.com/jangala-dev/nb-esp32-firmware/internal/facade"
	"github.com/jangala-dev/nb-esp32-firmware/internal/logx"
	"github.com/jangala-dev/nb-esp32-firmware/internal/peripherals"
	"github.com/jangala-dev/nb-esp32-firmware/internal/platform"
	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/scheduler"
	"github.com/jangala-dev/nb-esp32-firmware/internal/store"
	"github.com/jangala-dev/nb-esp32-firmware/internal/upstream"
	"github.com/jangala-dev/nb-esp32-firmware/internal/vmshim"
)

// controlPlaneAddr is where the front-of-device HTTP server listens once
// the AP interface is up (spec §4.3: "the HTTP server is started once the
// client IP is known" refers to the upstream client IP, not this listener).
const controlPlaneAddr = ":80"

func main() {
	st, err := store.New(store.NewMemBackend())
	if err != nil {
		logx.Errorf("storage self-test failed, halting boot: %v", err)
		return
	}

	layout, errs := loadLayout(st)
	broker, menu, bindErrs := peripherals.Bind(layout, platform.NewPins())
	errs = append(errs, bindErrs...)
	for _, e := range errs {
		logx.Warnf("peripheral init: %s.%s: %s", e.Kind, e.Name, e.Message)
	}
	_ = broker // the syscall dispatcher is consumed by the bytecode engine plugged into vmshim.Parser

	rc := runtime.New()

	// parser is the seam the real bytecode engine fills (vmshim.Parser);
	// FakeParser keeps the scheduler loop runnable end to end until that
	// engine is wired in.
	parser := &vmshim.FakeParser{}
	sched, err := scheduler.New(parser, st, rc)
	if err != nil {
		logx.Errorf("failed to build initial Env, halting boot: %v", err)
		return
	}

	httpClient := upstream.NewHTTPClient()
	replies := upstream.NewReplyTable()
	sys := facade.New(rand.Int63(), upstream.RPCContext{}, httpClient, replies, nil, rc)

	deps := control.NewDeps(st, rc, "")
	deps.SetStatus(control.Status{Menu: menu, Errors: errs})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	connectUpstream(ctx, st, replies, sys)

	logx.Infof("control plane listening on %s", controlPlaneAddr)
	server := &http.Server{Addr: controlPlaneAddr, Handler: control.NewRouter(deps)}
	if err := server.ListenAndServe(); err != nil {
		logx.Errorf("control plane server stopped: %v", err)
	}
}

// loadLayout reads the stored PeripheralLayout document, falling back to an
// empty layout (no peripherals bound, no init errors) on first boot.
func loadLayout(st *store.Store) (peripherals.Layout, []peripherals.InitError) {
	raw, ok, err := st.Peripherals.Get()
	if err != nil || !ok || raw == "" {
		return peripherals.Layout{}, nil
	}
	layout, perr := peripherals.ParseLayout([]byte(raw))
	if perr != nil {
		return peripherals.Layout{}, []peripherals.InitError{{Kind: "layout", Name: "stored", Message: perr.Error()}}
	}
	return layout, nil
}

// connectUpstream dials the websocket to the configured NetsBlox server, if
// any is stored, and enables the facade's real-time clock once an upstream
// connection exists (spec §4.5: SNTP-gated real clock -- a successful
// upstream handshake is this module's stand-in for "SNTP synced", since the
// actual SNTP client is a platform concern out of this module's scope).
func connectUpstream(ctx context.Context, st *store.Store, replies *upstream.ReplyTable, sys *facade.Facade) {
	base, ok, err := st.NetsbloxServer.Get()
	if err != nil || !ok || base == "" {
		return
	}
	clientID := upstream.NewRequestID()
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ws, err := upstream.Dial(dialCtx, base, clientID, clientID, replies)
	if err != nil {
		logx.Warnf("upstream websocket dial failed: %v", err)
		return
	}
	sys.SetWSClient(ws)
	sys.EnableRealClock()
}
