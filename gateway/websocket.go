// WebSocket handler for real-time chat sessions

package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/saireddyganapuram/Tecnvirons/session"
)

// HandleSession upgrades the connection and runs one session for its
// lifetime. The session id comes from the path; an optional user_id query
// parameter names the user.
func (g *Gateway) HandleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	if g.wsConnCount.Add(1) > g.cfg.MaxWSConns {
		g.wsConnCount.Add(-1)
		http.Error(w, "too many WebSocket connections", http.StatusServiceUnavailable)
		return
	}
	defer g.wsConnCount.Add(-1)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		log.Printf("[WS] Accept error: %v", err)
		return
	}
	conn.SetReadLimit(g.cfg.ReadLimit)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sender := &wsSender{conn: conn, timeout: g.cfg.WriteTimeout}

	var presence session.Presence
	if g.deps.KV != nil {
		presence = g.deps.KV
	}
	orch := session.NewOrchestrator(sessionID, r.URL.Query().Get("user_id"),
		sender, g.deps.Responder, g.deps.Recorder, g.deps.Finalizer, presence)
	defer orch.Close()

	if err := orch.Connect(ctx); err != nil {
		log.Printf("[WS] %s connect failed: %v", sessionID, err)
		return
	}

	// Protocol-level pings detect dead connections; a failed ping cancels
	// the read loop.
	go func() {
		ticker := time.NewTicker(g.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, pingCancel := context.WithTimeout(ctx, g.cfg.WriteTimeout)
				err := conn.Ping(pingCtx)
				pingCancel()
				if err != nil {
					log.Printf("[WS] %s ping failed: %v", sessionID, err)
					cancel()
					return
				}
			}
		}
	}()

	// Messages are handled strictly in arrival order: the next read does not
	// start until the previous turn's stream has fully drained.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Printf("[WS] %s read: %v", sessionID, err)
			return
		}
		if err := orch.HandleMessage(ctx, data); err != nil {
			log.Printf("[WS] %s turn aborted: %v", sessionID, err)
			return
		}
	}
}

// wsSender adapts one WebSocket connection to the session sender. The mutex
// keeps data-frame writes serialized should a second sender ever share the
// connection; coder/websocket data writes are not safe for concurrent use.
// Keepalive pings bypass it: Ping sends a control frame, which the library
// serializes internally.
type wsSender struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	timeout time.Duration
}

func (s *wsSender) Send(ctx context.Context, ev session.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(writeCtx, websocket.MessageText, data)
}
