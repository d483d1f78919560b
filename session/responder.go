package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/saireddyganapuram/Tecnvirons/pkg/llm"
	"github.com/saireddyganapuram/Tecnvirons/tools"
)

// Responder produces the ordered event stream for one turn: an optional
// tool_call/tool_result pair, then reply tokens, then done. Events are
// yielded into an unbuffered channel so the consumer paces the producer
// (at most one event in flight, so a slow client naturally slows
// generation).
type Responder struct {
	registry   *tools.Registry
	gen        llm.Generator
	tokenDelay time.Duration
}

// NewResponder wires the responder. tokenDelay is pure pacing for perceived
// realtime output; zero is valid (tests run with zero).
func NewResponder(registry *tools.Registry, gen llm.Generator, tokenDelay time.Duration) *Responder {
	return &Responder{registry: registry, gen: gen, tokenDelay: tokenDelay}
}

// Stream starts production for one turn. The returned channel is closed when
// the sequence ends or ctx is cancelled; a cancelled turn is simply not
// drained further.
func (r *Responder) Stream(ctx context.Context, mode Mode, history []Turn, userMsg string) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		emit := func(ev Event) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		// At most one tool per turn: first matching trigger wins.
		var toolNote string
		if trig := tools.DetectTrigger(userMsg); trig != nil {
			if !emit(Event{Type: EventToolCall, Tool: trig.Tool, Input: trig.Args}) {
				return
			}
			output, err := r.registry.Call(ctx, trig.Tool, trig.Args)
			if err != nil {
				// Tool failures become an error-payload result; the stream continues
				output = map[string]interface{}{"error": err.Error()}
				toolNote = fmt.Sprintf("the %s tool failed", trig.Tool)
			} else {
				toolNote = describeResult(trig.Tool, output)
			}
			if !emit(Event{Type: EventToolResult, Tool: trig.Tool, Output: output}) {
				return
			}
		}

		reply, err := r.gen.Generate(ctx, SystemPrompt(mode), toMessages(history), userMsg, toolNote)
		if err != nil {
			log.Printf("[RESPONDER] %s generate failed: %v", r.gen.Name(), err)
			emit(Event{Type: EventError, Message: "response generation failed"})
			emit(Event{Type: EventDone})
			return
		}

		for _, tok := range llm.Tokenize(reply) {
			if r.tokenDelay > 0 {
				select {
				case <-time.After(r.tokenDelay):
				case <-ctx.Done():
					return
				}
			}
			if !emit(Event{Type: EventToken, Content: tok}) {
				return
			}
		}
		emit(Event{Type: EventDone})
	}()
	return ch
}

func describeResult(tool string, output interface{}) string {
	if m, ok := output.(map[string]interface{}); ok {
		return fmt.Sprintf("the %s tool returned %d key fields", tool, len(m))
	}
	return fmt.Sprintf("the %s tool returned a result", tool)
}

func toMessages(history []Turn) []llm.Message {
	msgs := make([]llm.Message, len(history))
	for i, t := range history {
		msgs[i] = llm.Message{Role: t.Role, Content: t.Content}
	}
	return msgs
}
