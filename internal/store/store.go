package store

import (
	"bytes"
	"fmt"
)

// Entry is one logical key over Backend. get/set/clear mirror
// original_source/storage.rs's Entry<'a, T> (String-typed entries there; all
// of this spec's persisted values are also UTF-8 strings per §6).
type Entry struct {
	backend Backend
	key     string
}

func (e Entry) Get() (string, bool, error) {
	v, ok, err := e.backend.Get(e.key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(v), true, nil
}

func (e Entry) Set(value string) error {
	return e.backend.Set(e.key, []byte(value))
}

func (e Entry) Clear() error {
	return e.backend.Remove(e.key)
}

const selfTestKey = "__selftest__"
const selfTestValue = "nb-esp32-selftest"

// Store is the typed facade over the persisted keys spec.md §6 names.
type Store struct {
	backend Backend

	WifiAPSSID      Entry
	WifiAPPass      Entry
	WifiClientSSID  Entry
	WifiClientPass  Entry
	NetsbloxServer  Entry
	Peripherals     Entry
	Project         Entry
}

// New constructs a Store and runs the self-test: write a known blob under a
// sentinel key, read it back, remove it, and assert the shape survived.
// Divergence is fatal per spec §7 ("Flash self-test failure (F): halts
// boot"); New returns an error instead of panicking so the caller (boot
// sequence) controls how the halt happens.
func New(backend Backend) (*Store, error) {
	s := &Store{
		backend:        backend,
		WifiAPSSID:     Entry{backend, "wifi_ap_ssid"},
		WifiAPPass:     Entry{backend, "wifi_ap_pass"},
		WifiClientSSID: Entry{backend, "wifi_client_ssid"},
		WifiClientPass: Entry{backend, "wifi_client_pass"},
		NetsbloxServer: Entry{backend, "netsblox_server"},
		Peripherals:    Entry{backend, "peripherals"},
		Project:        Entry{backend, "project"},
	}
	if err := s.selfTest(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) selfTest() error {
	if err := s.backend.Set(selfTestKey, []byte(selfTestValue)); err != nil {
		return fmt.Errorf("storage self-test: write failed: %w", err)
	}
	got, ok, err := s.backend.Get(selfTestKey)
	if err != nil {
		return fmt.Errorf("storage self-test: read-back failed: %w", err)
	}
	if !ok || !bytes.Equal(got, []byte(selfTestValue)) {
		return fmt.Errorf("storage self-test: read-back mismatch, got %q", got)
	}
	if err := s.backend.Remove(selfTestKey); err != nil {
		return fmt.Errorf("storage self-test: remove failed: %w", err)
	}
	if _, ok, err := s.backend.Get(selfTestKey); err != nil {
		return fmt.Errorf("storage self-test: post-remove read failed: %w", err)
	} else if ok {
		return fmt.Errorf("storage self-test: key survived remove")
	}
	return nil
}

// entries used by ClearAll, in no particular order (all keys are removed).
func (s *Store) entries() []Entry {
	return []Entry{
		s.WifiAPSSID, s.WifiAPPass, s.WifiClientSSID, s.WifiClientPass,
		s.NetsbloxServer, s.Peripherals, s.Project,
	}
}

// ClearAll removes every known key (spec §4.3's POST /wipe).
func (s *Store) ClearAll() error {
	for _, e := range s.entries() {
		if err := e.Clear(); err != nil {
			return err
		}
	}
	return nil
}
