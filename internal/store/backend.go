// Package store implements the Persistent Store (spec §4.1): a thin typed
// facade over a byte-oriented key-value namespace, grounded on
// original_source/storage.rs's Entry<T>/StorageController.
package store

// Backend is the raw byte-oriented KV namespace the flash/NVS partition
// exposes. Providing it is a platform concern (spec §1: firmware boot is out
// of scope); the Store only ever speaks Backend.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// MemBackend is an in-process Backend, used by tests and by any build that
// has not wired a real flash partition yet.
type MemBackend struct {
	entries map[string][]byte
}

func NewMemBackend() *MemBackend {
	return &MemBackend{entries: make(map[string][]byte)}
}

func (m *MemBackend) Get(key string) ([]byte, bool, error) {
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *MemBackend) Set(key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.entries[key] = cp
	return nil
}

func (m *MemBackend) Remove(key string) error {
	delete(m.entries, key)
	return nil
}
