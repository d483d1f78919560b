package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the session lifecycle phase
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "terminated"
	}
}

// ErrNotActive is returned when a message arrives outside the active phase
var ErrNotActive = errors.New("session is not active")

// Sender delivers one outbound event to the client
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Recorder persists session data. CreateSession is synchronous: the durable
// row must exist before any event references it and before the close path
// reads it back. Record is fire-and-forget.
type Recorder interface {
	CreateSession(sessionID, userID string) error
	Record(sessionID, role, content string)
}

// Finalizer runs the once-per-session close work (summary + terminal update)
type Finalizer interface {
	Finalize(sessionID string) error
}

// Presence tracks live sessions and per-session token counts. A nil Presence
// is tolerated everywhere.
type Presence interface {
	MarkActive(sessionID string) error
	ClearActive(sessionID string) error
	SetTokenCache(sessionID string, tokens int) error
}

// Orchestrator owns one connection's session: lifecycle state, the immutable
// conversation mode, the in-memory context, and the bridge between responder
// events and the client. All message handling runs on the connection's read
// loop; only Close may be called from another goroutine.
type Orchestrator struct {
	sessionID string
	userID    string

	sender    Sender
	responder *Responder
	recorder  Recorder
	finalizer Finalizer
	presence  Presence

	state   atomic.Int32
	mode    Mode
	modeSet bool
	conv    *Context

	startTime time.Time
	closeOnce sync.Once
}

// NewOrchestrator builds a session in the connecting state. An empty userID
// gets an anonymous identity.
func NewOrchestrator(sessionID, userID string, sender Sender, responder *Responder, recorder Recorder, finalizer Finalizer, presence Presence) *Orchestrator {
	if userID == "" {
		userID = "anon-" + uuid.NewString()[:8]
	}
	o := &Orchestrator{
		sessionID: sessionID,
		userID:    userID,
		sender:    sender,
		responder: responder,
		recorder:  recorder,
		finalizer: finalizer,
		presence:  presence,
		conv:      NewContext(),
		startTime: time.Now().UTC(),
	}
	o.state.Store(int32(StateConnecting))
	return o
}

// State returns the current lifecycle phase
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Mode returns the conversation mode ("" until the first message arrives)
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Connect registers the session and sends the welcome event. Failure to reach
// the client moves straight to closing.
func (o *Orchestrator) Connect(ctx context.Context) error {
	if err := o.recorder.CreateSession(o.sessionID, o.userID); err != nil {
		// Stream anyway; with no durable row the close path has nothing to
		// finalize, so no half-written session is left behind.
		log.Printf("[ERROR] create session %s: %v", o.sessionID, err)
	}
	if o.presence != nil {
		if err := o.presence.MarkActive(o.sessionID); err != nil {
			log.Printf("[WARN] mark active failed for %s: %v", o.sessionID, err)
		}
	}

	welcome := Event{Type: EventSystem, Message: "Connected to session: " + o.sessionID}
	if err := o.sender.Send(ctx, welcome); err != nil {
		o.state.Store(int32(StateClosing))
		return fmt.Errorf("send welcome: %w", err)
	}

	o.state.Store(int32(StateActive))
	log.Printf("[SESSION] %s connected (user: %s)", o.sessionID, o.userID)
	return nil
}

// HandleMessage runs one full turn: parse, route, stream, persist. Malformed
// input is answered with an error event and the session stays active. A
// sender failure abandons the turn and returns the error; the caller is
// expected to tear the connection down.
func (o *Orchestrator) HandleMessage(ctx context.Context, raw []byte) error {
	if o.State() != StateActive {
		return ErrNotActive
	}

	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return o.sendClientError(ctx, "invalid message format")
	}
	text := strings.TrimSpace(in.Text())
	if text == "" {
		return o.sendClientError(ctx, "empty message")
	}

	// The first user message fixes the mode for the whole session
	if !o.modeSet {
		o.mode = DetectMode(text)
		o.modeSet = true
		log.Printf("[SESSION] %s mode: %s", o.sessionID, o.mode)
	}

	history := o.conv.Turns()
	o.conv.Append(RoleUser, text)
	o.recorder.Record(o.sessionID, RoleUser, text)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reply strings.Builder
	for ev := range o.responder.Stream(streamCtx, o.mode, history, text) {
		switch ev.Type {
		case EventToken:
			reply.WriteString(ev.Content)
		case EventToolResult:
			// The tool turn joins the context before the client sees it, so
			// the log order always matches the stream order.
			payload := marshalToolOutput(ev.Tool, ev.Output)
			o.conv.Append(RoleTool, payload)
			o.recorder.Record(o.sessionID, RoleTool, payload)
		case EventDone:
			ev.TotalTokens = countTokens(reply.String())
		}

		if err := o.sender.Send(ctx, ev); err != nil {
			// Client gone mid-stream: abandon the turn. The partial reply is
			// never recorded as an assistant event.
			cancel()
			o.state.Store(int32(StateClosing))
			return fmt.Errorf("send %s: %w", ev.Type, err)
		}
	}

	if final := reply.String(); final != "" {
		o.conv.Append(RoleAssistant, final)
		o.recorder.Record(o.sessionID, RoleAssistant, final)
		if o.presence != nil {
			if err := o.presence.SetTokenCache(o.sessionID, countTokens(final)); err != nil {
				log.Printf("[WARN] token cache failed for %s: %v", o.sessionID, err)
			}
		}
	}
	return nil
}

// Close runs the terminal sequence exactly once, no matter how many paths
// race into it (read-loop exit, server shutdown, send failure teardown).
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.state.Store(int32(StateClosing))

		if o.finalizer != nil {
			if err := o.finalizer.Finalize(o.sessionID); err != nil {
				log.Printf("[ERROR] finalize failed for %s: %v", o.sessionID, err)
			}
		}
		if o.presence != nil {
			if err := o.presence.ClearActive(o.sessionID); err != nil {
				log.Printf("[WARN] clear active failed for %s: %v", o.sessionID, err)
			}
		}

		o.state.Store(int32(StateTerminated))
		log.Printf("[SESSION] %s closed after %s", o.sessionID, time.Since(o.startTime).Round(time.Second))
	})
}

// sendClientError reports a recoverable input problem without leaving the
// active state
func (o *Orchestrator) sendClientError(ctx context.Context, msg string) error {
	if err := o.sender.Send(ctx, Event{Type: EventError, Message: msg}); err != nil {
		o.state.Store(int32(StateClosing))
		return fmt.Errorf("send error event: %w", err)
	}
	return nil
}

func marshalToolOutput(tool string, output interface{}) string {
	wrapped := map[string]interface{}{"tool": tool, "output": output}
	b, err := json.Marshal(wrapped)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"output":null}`, tool)
	}
	return string(b)
}
