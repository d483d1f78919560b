package session

// Context is the append-only in-memory conversation log for one session.
// It has exactly one owner (the session's orchestrator) and is only touched
// from that orchestrator's sequential loop, so it needs no locking.
type Context struct {
	turns []Turn
}

func NewContext() *Context {
	return &Context{}
}

// Append adds one turn to the log
func (c *Context) Append(role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of the log so callers cannot mutate it
func (c *Context) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns
func (c *Context) Len() int {
	return len(c.turns)
}
