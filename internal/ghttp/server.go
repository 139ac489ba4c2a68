// Package ghttp serves watchdog status over HTTP.
package ghttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gordian-engine/gmwdg/gwatchdog"
	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServer struct {
	done chan struct{}
}

type HTTPServerConfig struct {
	Listener net.Listener

	Supervisor *gwatchdog.Supervisor

	// Registry listed by /nodes.
	// If nil, /nodes uses [gwdg.Default] at request time.
	Registry *gwdg.Registry

	// If set, /metrics serves this gatherer.
	Gatherer prometheus.Gatherer
}

// NewHTTPServer starts serving on cfg.Listener
// until ctx is canceled.
func NewHTTPServer(ctx context.Context, log *slog.Logger, cfg HTTPServerConfig) *HTTPServer {
	if cfg.Listener == nil {
		panic("BUG: listener for the HTTP server is nil")
	}
	if cfg.Supervisor == nil {
		panic("BUG: supervisor for the HTTP server is nil")
	}

	srv := &http.Server{
		Handler: newMux(log, cfg),

		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	h := &HTTPServer{
		done: make(chan struct{}),
	}
	go h.serve(log, cfg.Listener, srv)
	go h.waitForShutdown(ctx, srv)

	return h
}

// Wait blocks until the server has stopped.
func (h *HTTPServer) Wait() {
	<-h.done
}

func (h *HTTPServer) waitForShutdown(ctx context.Context, srv *http.Server) {
	select {
	case <-h.done:
		return
	case <-ctx.Done():
		_ = srv.Close()
	}
}

func (h *HTTPServer) serve(log *slog.Logger, ln net.Listener, srv *http.Server) {
	defer close(h.done)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
			log.Info("HTTP server shutting down")
		} else {
			log.Info("HTTP server shutting down due to error", "err", err)
		}
	}
}

func newMux(log *slog.Logger, cfg HTTPServerConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealthz(cfg)).Methods("GET")
	r.HandleFunc("/report", handleReport(log, cfg)).Methods("GET")
	r.HandleFunc("/check", handleCheck(log, cfg)).Methods("POST")
	r.HandleFunc("/nodes", handleNodes(log, cfg)).Methods("GET")

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	setDebugRoutes(log, cfg, r)

	return r
}

func handleHealthz(cfg HTTPServerConfig) func(w http.ResponseWriter, req *http.Request) {
	s := cfg.Supervisor
	return func(w http.ResponseWriter, req *http.Request) {
		r, ok := s.LastReport()
		switch {
		case !ok:
			http.Error(w, "no check completed yet", http.StatusServiceUnavailable)
		case !r.Healthy():
			http.Error(w, "expired", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte("ok\n"))
		}
	}
}

func handleReport(log *slog.Logger, cfg HTTPServerConfig) func(w http.ResponseWriter, req *http.Request) {
	s := cfg.Supervisor
	return func(w http.ResponseWriter, req *http.Request) {
		r, ok := s.LastReport()
		if !ok {
			http.Error(w, "no check completed yet", http.StatusNotFound)
			return
		}

		writeJSON(log, w, "report", r)
	}
}

func handleCheck(log *slog.Logger, cfg HTTPServerConfig) func(w http.ResponseWriter, req *http.Request) {
	s := cfg.Supervisor
	return func(w http.ResponseWriter, req *http.Request) {
		r, ok := s.CheckNow(req.Context())
		if !ok {
			http.Error(w, "supervisor stopped before completing the check", http.StatusServiceUnavailable)
			return
		}

		writeJSON(log, w, "check", r)
	}
}

func handleNodes(log *slog.Logger, cfg HTTPServerConfig) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		reg := cfg.Registry
		if reg == nil {
			reg = gwdg.Default()
		}

		nodes, err := reg.Nodes()
		if err != nil {
			http.Error(w, "failed to list nodes: "+err.Error(), http.StatusInternalServerError)
			return
		}

		type jsonNode struct {
			ID       gwdg.ID        `json:"id"`
			Timeout  uint32         `json:"timeout"`
			LastFeed gwdg.Timestamp `json:"last_feed"`
			Elapsed  uint32         `json:"elapsed"`
			Expired  bool           `json:"expired"`
		}
		resp := make([]jsonNode, len(nodes))
		for i, n := range nodes {
			resp[i] = jsonNode(n)
		}

		writeJSON(log, w, "nodes", resp)
	}
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, route string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to marshal response", "route", route, "err", err)
	}
}
