package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator produces deterministic keyword-contextual replies. It stands
// in for a real model behind the same Generator interface, so swapping in a
// live provider is a config change, not a code change.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Name() string { return "mock" }

func (g *MockGenerator) Generate(ctx context.Context, systemPrompt string, history []Message, userMsg, toolNote string) (string, error) {
	if toolNote != "" {
		return "Based on the tool results, here's what I found: " + toolNote, nil
	}

	lower := strings.ToLower(userMsg)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I'm here to help you. How can I assist you today?", nil
	case strings.Contains(lower, "how are you"):
		return "I'm functioning perfectly, thank you for asking! I'm ready to help with any questions or tasks you have.", nil
	case strings.Contains(lower, "websocket") || strings.Contains(lower, "realtime"):
		return "WebSockets enable real-time, bidirectional communication between clients and servers. This is perfect for chat applications, live updates, and streaming data like we're doing right now!", nil
	case strings.Contains(lower, "database") || strings.Contains(lower, "sqlite"):
		return "SQLite is a fantastic embedded database. With WAL mode it handles concurrent readers alongside a writer, which is plenty for per-session event logs like ours.", nil
	default:
		return fmt.Sprintf("I understand you're asking about: '%s'. I'm here to help! Could you provide more details about what you'd like to know?", userMsg), nil
	}
}
