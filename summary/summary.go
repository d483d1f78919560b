// Package summary produces the once-per-session final summary written into
// the session row when the connection ends.
package summary

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/saireddyganapuram/Tecnvirons/storage"
)

// Unavailable is written when the event history cannot be read. The terminal
// session update still happens so end_time and duration are never lost.
const Unavailable = "summary unavailable"

// Store is the slice of the storage layer the summarizer needs
type Store interface {
	GetSession(sessionID string) (*storage.Session, error)
	FetchHistory(sessionID string) ([]storage.Event, error)
	UpdateSessionEnd(sessionID string, endTime time.Time, durationSecs int, summary string) error
}

// Summarizer finalizes sessions synchronously on the close path
type Summarizer struct {
	store Store
}

func New(store Store) *Summarizer {
	return &Summarizer{store: store}
}

// Finalize computes the summary from the persisted history and writes the
// terminal session update (end_time, duration, final_summary). Reuse of a
// session id simply overwrites the previous terminal values.
func (s *Summarizer) Finalize(sessionID string) error {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	text := Unavailable
	if events, err := s.store.FetchHistory(sessionID); err != nil {
		log.Printf("[WARN] history unavailable for %s: %v", sessionID, err)
	} else {
		text = Summarize(events)
	}

	end := time.Now().UTC()
	duration := int(end.Sub(sess.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}
	if err := s.store.UpdateSessionEnd(sessionID, end, duration, text); err != nil {
		return fmt.Errorf("finalize %s: %w", sessionID, err)
	}
	log.Printf("[OK] session %s summarized (%ds)", sessionID, duration)
	return nil
}

// topicRules maps content keywords to topic labels, checked in order
var topicRules = []struct {
	keywords []string
	label    string
}{
	{[]string{"websocket", "realtime", "real-time"}, "WebSockets"},
	{[]string{"api"}, "APIs"},
	{[]string{"database", "sqlite", "sql"}, "Databases"},
	{[]string{"data", "fetch", "stats"}, "Data Retrieval"},
}

// Summarize builds a deterministic text summary from an event history:
// per-role counts plus topics detected in the first three user messages.
func Summarize(events []storage.Event) string {
	if len(events) == 0 {
		return "Empty session with no messages exchanged."
	}

	var userCount, assistantCount, toolCount int
	var firstUser []string
	for _, ev := range events {
		switch ev.Role {
		case storage.RoleUser:
			userCount++
			if len(firstUser) < 3 {
				firstUser = append(firstUser, ev.Content)
			}
		case storage.RoleAssistant:
			assistantCount++
		case storage.RoleTool:
			toolCount++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session with %d user message(s) and %d assistant response(s)", userCount, assistantCount)
	if toolCount > 0 {
		fmt.Fprintf(&b, ", including %d tool result(s)", toolCount)
	}
	if topics := detectTopics(firstUser); len(topics) > 0 {
		b.WriteString(". Topics discussed: ")
		b.WriteString(strings.Join(topics, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func detectTopics(messages []string) []string {
	var topics []string
	seen := make(map[string]bool)
	for _, rule := range topicRules {
		for _, msg := range messages {
			lower := strings.ToLower(msg)
			matched := false
			for _, kw := range rule.keywords {
				if strings.Contains(lower, kw) {
					matched = true
					break
				}
			}
			if matched && !seen[rule.label] {
				seen[rule.label] = true
				topics = append(topics, rule.label)
			}
		}
	}
	return topics
}
