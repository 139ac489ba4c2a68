package ghttp

import (
	"log/slog"
	"net/http"

	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gorilla/mux"
)

type debugHandler struct {
	log *slog.Logger
	reg *gwdg.Registry
}

func setDebugRoutes(log *slog.Logger, cfg HTTPServerConfig, r *mux.Router) {
	h := debugHandler{
		log: log,
		reg: cfg.Registry,
	}

	r.HandleFunc("/debug/verify", h.HandleVerify).Methods("GET")
}

// HandleVerify walks the whole registry list.
// It is linear in the number of nodes and holds the critical section meanwhile.
func (h debugHandler) HandleVerify(w http.ResponseWriter, req *http.Request) {
	reg := h.reg
	if reg == nil {
		reg = gwdg.Default()
	}

	if err := reg.Verify(); err != nil {
		h.log.Warn("Registry verification failed", "route", "verify", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, _ = w.Write([]byte("ok\n"))
}
