// Package session owns the per-connection conversation state machine:
// it routes the first message to a conversation mode, streams responder
// events to the client in generation order, and hands every completed
// event to the persistence dispatcher without blocking the stream.
package session

// Outbound event types
const (
	EventToken      = "token"
	EventToolCall   = "tool_call"
	EventToolResult = "tool_result"
	EventDone       = "done"
	EventError      = "error"
	EventSystem     = "system"
)

// Event roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Event is the outbound wire event (tagged union keyed on Type)
type Event struct {
	Type        string      `json:"type"`
	Content     string      `json:"content,omitempty"`
	Tool        string      `json:"tool,omitempty"`
	Input       interface{} `json:"input,omitempty"`
	Output      interface{} `json:"output,omitempty"`
	Message     string      `json:"message,omitempty"`
	TotalTokens int         `json:"totalTokens,omitempty"`
}

// Inbound is one data-plane message from the client. Both the
// {role, content} shape and the legacy {message} shape are accepted.
type Inbound struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns the user text regardless of inbound shape
func (m *Inbound) Text() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Message
}

// Turn is one role-tagged entry of the in-memory conversation log
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
