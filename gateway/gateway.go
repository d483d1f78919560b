// Gateway module - HTTP server and WebSocket endpoint

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saireddyganapuram/Tecnvirons/pkg/config"
	"github.com/saireddyganapuram/Tecnvirons/pkg/kv"
	"github.com/saireddyganapuram/Tecnvirons/session"
	"github.com/saireddyganapuram/Tecnvirons/tools"
)

// writeJSON writes a JSON response with proper Content-Type header
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] Failed to encode JSON response: %v", err)
	}
}

// Deps are the session-layer dependencies the gateway wires into each
// connection. KV is optional; without it presence tracking is skipped and
// /health reports -1 active sessions.
type Deps struct {
	Responder *session.Responder
	Recorder  session.Recorder
	Finalizer session.Finalizer
	Registry  *tools.Registry
	KV        *kv.KV
}

// Gateway owns the HTTP server. Each accepted WebSocket connection gets its
// own session orchestrator; the gateway itself holds no per-session state
// beyond the connection counter.
type Gateway struct {
	cfg    config.GatewayConfig
	deps   Deps
	server *http.Server

	wsConnCount atomic.Int32
}

// New builds the gateway with its route table
func New(cfg config.GatewayConfig, deps Deps) *Gateway {
	g := &Gateway{cfg: cfg, deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /ws/session/{id}", g.HandleSession)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			writeJSON(w, map[string]string{
				"service":   "realtime session backend",
				"websocket": "/ws/session/{id}",
			})
		})
	}

	g.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// Handler exposes the route table (used by tests)
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully. Live
// WebSocket connections are closed by the shutdown deadline.
func (g *Gateway) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Printf("[WS] listening on %s", g.server.Addr)
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return g.server.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	active := -1
	if g.deps.KV != nil {
		if n, err := g.deps.KV.CountActive(); err == nil {
			active = n
		}
	}

	resp := map[string]interface{}{
		"status": "healthy",
		"features": map[string]bool{
			"websocket_streaming":     true,
			"tool_calling":            true,
			"database_persistence":    true,
			"post_session_processing": true,
		},
		"active_sessions": active,
		"connections":     g.wsConnCount.Load(),
	}
	if g.deps.Registry != nil {
		resp["tools"] = g.deps.Registry.List()
	}
	writeJSON(w, resp)
}
