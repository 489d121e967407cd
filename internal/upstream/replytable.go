package upstream

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReplyTimeout is MESSAGE_REPLY_TIMEOUT_MS from original_source/system.rs.
const ReplyTimeout = 1500 * time.Millisecond

// PollStatus is the three-way result poll_reply distinguishes (spec §4.4).
type PollStatus int

const (
	Pending PollStatus = iota
	Completed
)

// replyEntry mirrors original_source/system.rs's ReplyEntry: a deadline and
// an optional value, first writer wins.
type replyEntry struct {
	expiry time.Time
	value  any
	filled bool
}

// ReplyTable correlates outbound "expect a reply" messages with inbound
// __reply__ frames by UUID (spec §4.4, testable properties #6 and #7).
// nowFn is overridable so tests can simulate the passage of time without a
// real sleep.
type ReplyTable struct {
	mu      sync.Mutex
	entries map[string]*replyEntry
	nowFn   func() time.Time
}

func NewReplyTable() *ReplyTable {
	return &ReplyTable{
		entries: map[string]*replyEntry{},
		nowFn:   time.Now,
	}
}

// Allocate inserts a fresh pending entry and returns its key, as
// send_message(expect_reply=true) does.
func (t *ReplyTable) Allocate() string {
	key := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = &replyEntry{expiry: t.nowFn().Add(ReplyTimeout)}
	return key
}

// Fulfil writes value into the entry for key, first writer wins (spec
// property #7). A fulfil for a key with no entry (unknown, or already removed
// by Poll) is a no-op -- late replies are dropped, exactly as the Rust
// `get_mut` silently does nothing once the entry has been removed. An entry
// that has expired but not yet been polled still accepts the value.
func (t *ReplyTable) Fulfil(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok || e.filled {
		return
	}
	e.value = value
	e.filled = true
}

// Poll returns (Completed, value, true) once a value has arrived or the
// entry has expired (value is nil in the expiry case), removing the entry
// either way; it returns (Pending, nil, true) while still waiting, and
// (Completed, nil, false) for a key with no entry.
func (t *ReplyTable) Poll(key string) (status PollStatus, value any, hasEntry bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return Completed, nil, false
	}
	if e.filled {
		delete(t.entries, key)
		return Completed, e.value, true
	}
	if !t.nowFn().Before(e.expiry) {
		delete(t.entries, key)
		return Completed, nil, true
	}
	return Pending, nil, true
}
