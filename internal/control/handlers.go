package control

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jangala-dev/nb-esp32-firmware/internal/runtime"
	"github.com/jangala-dev/nb-esp32-firmware/internal/vmshim"
)

func handleIndex(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(renderIndex(d)))
	}
}

func handleExtensionJS(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ClientIP() == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Write([]byte(renderExtensionJS(d)))
	}
}

func handlePull(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		running, output, errLines := d.Runtime.PullSnapshot()
		errs := make([]json.RawMessage, 0, len(errLines))
		for _, line := range errLines {
			if line == "" {
				continue
			}
			errs = append(errs, json.RawMessage(line))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"running": running,
			"output":  output,
			"errors":  errs,
		})
	}
}

type inputBody struct {
	Input string `json:"input"`
}

func handleInput(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		// body is a bare JSON string "start"/"stop" per spec §4.3.
		var kind string
		if err := json.Unmarshal(body, &kind); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		switch kind {
		case "start":
			d.Runtime.Enqueue(runtime.ServerCommand{Kind: runtime.InputStart})
		case "stop":
			d.Runtime.Enqueue(runtime.ServerCommand{Kind: runtime.InputStop})
		default:
			writeError(w, http.StatusBadRequest, `expected "start" or "stop"`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleGetProject(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		xml, ok, err := d.Store.Project.Get()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok || xml == "" {
			xml = vmshim.EmptyProjectXML
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(xml))
	}
}

func handleSetProject(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 256*1024))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		d.Runtime.Enqueue(runtime.ServerCommand{Kind: runtime.SetProject, ProjectXML: string(body)})
		w.WriteHeader(http.StatusOK)
	}
}

func handleGetPeripherals(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok, err := d.Store.Peripherals.Get()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			raw = "{}"
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(raw))
	}
}

func handleSetPeripherals(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := d.Store.Peripherals.Set(string(body)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleTogglePaused(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		running := d.Runtime.TogglePaused()
		writeJSON(w, http.StatusOK, map[string]any{"running": running})
	}
}

func handleWipe(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.ClearAll(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type wifiBody struct {
	Kind string `json:"kind"`
	SSID string `json:"ssid"`
	Pass string `json:"pass"`
}

// handleWifi validates ssid ∈ [2,32), pass ∈ [8,64) (spec §4.3, E1).
func handleWifi(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wifiBody
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if len(body.SSID) < 2 || len(body.SSID) >= 32 {
			writeError(w, http.StatusBadRequest, "ssid must be 2-31 bytes")
			return
		}
		if len(body.Pass) < 8 || len(body.Pass) >= 64 {
			writeError(w, http.StatusBadRequest, "pass must be 8-63 bytes")
			return
		}

		var ssidEntry, passEntry = d.Store.WifiClientSSID, d.Store.WifiClientPass
		if body.Kind == "AccessPoint" {
			ssidEntry, passEntry = d.Store.WifiAPSSID, d.Store.WifiAPPass
		} else if body.Kind != "Client" {
			writeError(w, http.StatusBadRequest, `kind must be "AccessPoint" or "Client"`)
			return
		}
		if err := ssidEntry.Set(body.SSID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := passEntry.Set(body.Pass); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleServer(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1024))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if err := d.Store.NetsbloxServer.Set(string(body)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
