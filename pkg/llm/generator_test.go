package llm

import (
	"context"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Hello, world!")
	expected := []string{"Hello", ",", " ", "world", "!"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tok := range expected {
		if tokens[i] != tok {
			t.Errorf("token %d: expected %q, got %q", i, tok, tokens[i])
		}
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	text := "WebSockets enable real-time, bidirectional communication.\nNice!"
	if got := strings.Join(Tokenize(text), ""); got != text {
		t.Errorf("Tokenize lost content:\n%q\n%q", text, got)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if tokens := Tokenize(""); len(tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", tokens)
	}
}

func TestMockGeneratorDeterministic(t *testing.T) {
	g := NewMockGenerator()
	ctx := context.Background()

	first, err := g.Generate(ctx, "", nil, "Hello, how are you?", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, _ := g.Generate(ctx, "", nil, "Hello, how are you?", "")
	if first != second {
		t.Error("Mock generator is not deterministic")
	}
	if !strings.Contains(first, "Hello") {
		t.Errorf("Expected greeting reply, got %q", first)
	}
}

func TestMockGeneratorToolNote(t *testing.T) {
	g := NewMockGenerator()
	reply, err := g.Generate(context.Background(), "", nil, "fetch data", "the fetch_data tool returned 3 key fields")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(reply, "tool results") {
		t.Errorf("Expected tool-aware reply, got %q", reply)
	}
}

func TestMockGeneratorFallbackEchoesMessage(t *testing.T) {
	g := NewMockGenerator()
	reply, _ := g.Generate(context.Background(), "", nil, "quantum gardening", "")
	if !strings.Contains(reply, "quantum gardening") {
		t.Errorf("Fallback should echo the question, got %q", reply)
	}
}
