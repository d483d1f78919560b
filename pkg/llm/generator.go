// Package llm provides the reply generator abstraction for the streaming responder
package llm

import (
	"context"
	"strings"
)

// Message is one turn of conversation context handed to a generator
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces one complete assistant reply for a turn. The responder
// tokenizes the reply and streams it; generators only need to return the full
// text. Implementations must be safe for concurrent use across sessions.
type Generator interface {
	Name() string
	Generate(ctx context.Context, systemPrompt string, history []Message, userMsg, toolNote string) (string, error)
}

// Tokenize splits text into streamable tokens: words, whitespace, and
// punctuation each become their own token.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, ch := range text {
		switch {
		case ch == ' ' || ch == '\n' || ch == '\t':
			flush()
			tokens = append(tokens, string(ch))
		case strings.ContainsRune(".,!?;:", ch):
			flush()
			tokens = append(tokens, string(ch))
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return tokens
}
