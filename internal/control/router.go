package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// corsMiddleware sets Access-Control-Allow-Origin on every response (spec
// §4.3: "All responses set Access-Control-Allow-Origin: *") and answers
// CORS preflights with a permissive, text/plain 200 without routing
// further.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter mounts every endpoint spec §4.3 names. The VM-facing routes
// (GET /extension.js) are only meaningful once a client IP exists, but the
// handler itself enforces that -- the route is always mounted so
// OPTIONS/CORS behaves uniformly.
func NewRouter(d *Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/", handleIndex(d))
	r.Get("/extension.js", handleExtensionJS(d))

	r.Post("/pull", handlePull(d))
	r.Post("/input", handleInput(d))

	r.Get("/project", handleGetProject(d))
	r.Post("/project", handleSetProject(d))

	r.Get("/peripherals", handleGetPeripherals(d))
	r.Post("/peripherals", handleSetPeripherals(d))

	r.Post("/toggle-paused", handleTogglePaused(d))
	r.Post("/wipe", handleWipe(d))
	r.Post("/wifi", handleWifi(d))
	r.Post("/server", handleServer(d))

	return r
}
