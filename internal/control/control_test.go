package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/store"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	st, err := store.New(store.NewMemBackend())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return NewDeps(st, runtime.New(), "10.0.0.1")
}

// E1 (boot with no stored credentials).
func TestIndexNotConnected(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>Not Connected</p>") {
		t.Fatalf("body = %q, want it to contain Not Connected", rec.Body.String())
	}
}

func TestWifiValidation(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	cases := []struct {
		body string
		want int
	}{
		{`{"kind":"Client","ssid":"net","pass":"password"}`, http.StatusOK},
		{`{"kind":"Client","ssid":"n","pass":"password"}`, http.StatusBadRequest},
		{`{"kind":"Client","ssid":"net","pass":"short12"}`, http.StatusBadRequest}, // 7 bytes, one short of the minimum
		{`{"kind":"Client","ssid":"net","pass":"short1"}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/wifi", bytes.NewBufferString(c.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Fatalf("body %q: status = %d, want %d", c.body, rec.Code, c.want)
		}
	}

	ssid, ok, _ := d.Store.WifiClientSSID.Get()
	if !ok || ssid != "net" {
		t.Fatalf("wifi_client_ssid = %q, ok=%v, want \"net\"", ssid, ok)
	}
	pass, ok, _ := d.Store.WifiClientPass.Get()
	if !ok || pass != "password" {
		t.Fatalf("wifi_client_pass = %q, ok=%v, want \"password\"", pass, ok)
	}
}

func TestCORSPreflight(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	req := httptest.NewRequest(http.MethodOptions, "/wifi", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing permissive CORS origin header")
	}
}

// E5: pull endpoint atomicity.
func TestPullAtomicity(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	d.Runtime.SetRunning(true)
	d.Runtime.PushOutput("line1")
	d.Runtime.PushOutput("line2")
	d.Runtime.PushOutput("line3")
	d.Runtime.PushError(`{"cause":"boom"}`)

	req := httptest.NewRequest(http.MethodPost, "/pull", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var first struct {
		Running bool              `json:"running"`
		Output  string            `json:"output"`
		Errors  []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !first.Running || first.Output != "line1\nline2\nline3\n" || len(first.Errors) != 1 {
		t.Fatalf("first pull = %+v, want running output=line1..line3 one error", first)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/pull", nil)
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req2)

	var second struct {
		Output string            `json:"output"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(rec2.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if second.Output != "" || len(second.Errors) != 0 {
		t.Fatalf("second pull = %+v, want empty", second)
	}
}

func TestGetProjectReturnsEmptyProjectWhenUnset(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("status=%d, body len=%d", rec.Code, rec.Body.Len())
	}
}

func TestTogglePaused(t *testing.T) {
	d := newTestDeps(t)
	r := NewRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/toggle-paused", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body struct {
		Running bool `json:"running"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Running {
		t.Fatalf("expected toggling a fresh (paused) RuntimeContext to report running=true")
	}
}
