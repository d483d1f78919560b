package session

import "testing"

func TestContextAppendOrder(t *testing.T) {
	c := NewContext()
	c.Append(RoleUser, "first")
	c.Append(RoleAssistant, "second")
	c.Append(RoleTool, "third")

	turns := c.Turns()
	if len(turns) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(turns))
	}
	if turns[0].Content != "first" || turns[2].Content != "third" {
		t.Errorf("Turns out of order: %v", turns)
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("Expected assistant role, got %s", turns[1].Role)
	}
}

func TestContextTurnsReturnsCopy(t *testing.T) {
	c := NewContext()
	c.Append(RoleUser, "original")

	turns := c.Turns()
	turns[0].Content = "mutated"

	if c.Turns()[0].Content != "original" {
		t.Error("Turns() exposed internal state")
	}
}

func TestContextLen(t *testing.T) {
	c := NewContext()
	if c.Len() != 0 {
		t.Errorf("Expected empty context, got %d", c.Len())
	}
	c.Append(RoleUser, "hi")
	if c.Len() != 1 {
		t.Errorf("Expected 1 turn, got %d", c.Len())
	}
}
