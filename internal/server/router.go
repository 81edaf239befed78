package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the relay endpoints. webDir may be empty when no browser
// client is served.
func NewRouter(mm *Matchmaking, webDir string, gatherer prometheus.Gatherer, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	ws := HandleWebSocket(mm, log)
	r.Get("/ws", ws)
	r.Get("/ws/{session:[A-Za-z0-9]+}", ws)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/index.html", http.StatusFound)
	})
	r.Get("/{session:[A-Z0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/index.html?session="+chi.URLParam(r, "session"), http.StatusFound)
	})
	if webDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(webDir)))
	}

	return r
}
