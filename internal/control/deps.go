// Package control implements the front-of-device HTTP control plane (spec
// §4.3): a small set of endpoints that mutate the Store, enqueue
// ServerCommands, and report RuntimeContext status. The teacher never
// shipped an HTTP surface of its own, so the routing layer is adapted from
// the rest of the example pack (go-chi/chi/v5) rather than the teacher.
package control

import (
	"sync"

	"github.com/jangala-dev/nb-esp32-firmware/internal/peripherals"
	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/store"
)

// Status is the boot-time peripheral-init summary rendered into GET / and
// consulted by GET /extension.js to decide the syscall menu (spec §4.2,
// §4.3).
type Status struct {
	Menu   []peripherals.MenuEntry
	Errors []peripherals.InitError
}

// Deps bundles everything the handlers close over. IPs are plain strings
// set once bring-up completes; they are out of this package's control
// (spec §1's Wi-Fi bring-up is an external collaborator).
type Deps struct {
	Store   *store.Store
	Runtime *runtime.RuntimeContext

	mu       sync.RWMutex
	status   Status
	apIP     string
	clientIP string
}

func NewDeps(st *store.Store, rc *runtime.RuntimeContext, apIP string) *Deps {
	return &Deps{Store: st, Runtime: rc, apIP: apIP}
}

func (d *Deps) SetStatus(s Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

func (d *Deps) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// SetClientIP records the client IP once Wi-Fi association completes; an
// empty string means "not connected" (spec E1).
func (d *Deps) SetClientIP(ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clientIP = ip
}

func (d *Deps) ClientIP() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clientIP
}

func (d *Deps) APIP() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.apIP
}
