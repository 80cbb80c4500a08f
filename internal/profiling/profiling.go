// Package profiling exposes pprof over HTTP (component K in SPEC_FULL.md),
// gated behind config.ProfilingConfig so an operator can attach a profiler to
// a running worker process without touching the mining engine.
//
// The endpoint set is trimmed to what matters for a single-engine worker:
// goroutine/block/mutex to watch mpsc.Queue contention, heap/allocs to watch
// scratchpad memory, and CPU profiling for the mixing loop itself. cmdline,
// symbol, and trace are left out — they serve interactive `go tool pprof`
// sessions against a multi-binary deployment, which this single-process
// worker never is. A small /debug/engine/goroutines endpoint is added
// instead, to let an operator confirm the engine's LockOSThread-pinned
// goroutine isn't being starved alongside the ordinary Go-scheduled ones.
package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/tos-network/cn-worker-core/internal/config"
	"github.com/tos-network/cn-worker-core/internal/util"
)

// Server provides pprof profiling endpoints scoped to the worker's own
// concerns.
type Server struct {
	cfg    *config.ProfilingConfig
	server *http.Server
}

// NewServer creates a new profiling server
func NewServer(cfg *config.ProfilingConfig) *Server {
	return &Server{
		cfg: cfg,
	}
}

// Start begins the profiling server
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
	mux.HandleFunc("/debug/engine/goroutines", handleEngineGoroutines)

	s.server = &http.Server{
		Addr:    s.cfg.Bind,
		Handler: mux,
	}

	util.Infof("pprof profiling server listening on %s", s.cfg.Bind)
	util.Info("  Available endpoints:")
	util.Info("    /debug/pprof/             - Index")
	util.Info("    /debug/pprof/goroutine    - Goroutine stack traces")
	util.Info("    /debug/pprof/heap         - Heap profile")
	util.Info("    /debug/pprof/allocs       - Allocation profile")
	util.Info("    /debug/pprof/profile      - CPU profile (30s)")
	util.Info("    /debug/pprof/block        - Blocking profile")
	util.Info("    /debug/pprof/mutex        - Mutex contention profile")
	util.Info("    /debug/engine/goroutines  - goroutine/CPU/GOMAXPROCS counts")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("Profiling server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts down the profiling server
func (s *Server) Stop() error {
	if s.server != nil {
		util.Info("Stopping profiling server")
		return s.server.Close()
	}
	return nil
}

// engineGoroutineStats is the /debug/engine/goroutines response body.
type engineGoroutineStats struct {
	NumGoroutine int `json:"num_goroutine"`
	NumCPU       int `json:"num_cpu"`
	GOMAXPROCS   int `json:"gomaxprocs"`
}

// handleEngineGoroutines reports the live goroutine count alongside
// GOMAXPROCS, so an operator can tell the LockOSThread-pinned engine
// goroutine apart from scheduler pressure on the rest of the process.
func handleEngineGoroutines(w http.ResponseWriter, r *http.Request) {
	stats := engineGoroutineStats{
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		GOMAXPROCS:   runtime.GOMAXPROCS(0),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
