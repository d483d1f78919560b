package tools

import (
	"context"
	"time"
)

// StatsTool simulates fetching user statistics
type StatsTool struct{}

func (t *StatsTool) Name() string {
	return "get_user_stats"
}

func (t *StatsTool) Description() string {
	return "Fetch aggregate usage statistics for the current user"
}

func (t *StatsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	// Simulated API call latency
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return map[string]interface{}{
		"total_sessions":       42,
		"total_messages":       1337,
		"avg_session_duration": 180,
		"favorite_topics":      []string{"AI", "WebSockets", "Go"},
	}, nil
}
