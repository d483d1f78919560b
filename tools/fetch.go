package tools

import (
	"context"
	"time"
)

// FetchTool simulates fetching data for a query
type FetchTool struct{}

func (t *FetchTool) Name() string {
	return "fetch_data"
}

func (t *FetchTool) Description() string {
	return "Fetch data for a query type (general or stats)"
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	// Simulated API call latency
	select {
	case <-time.After(150 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	switch GetString(args, "query") {
	case "stats":
		return map[string]interface{}{
			"status":  "success",
			"metrics": map[string]interface{}{"cpu": "45%", "memory": "2.1GB", "uptime": "24h"},
		}, nil
	default:
		return map[string]interface{}{
			"status": "success",
			"data":   []string{"Item 1", "Item 2", "Item 3"},
			"count":  3,
		}, nil
	}
}
