package tools

import "strings"

// Trigger names a tool to run for a turn plus its derived arguments
type Trigger struct {
	Tool string
	Args map[string]interface{}
}

// Static trigger table: keyword sets mapped to tool names. Keeping the set of
// reachable tools closed and statically known makes the dispatch testable.
var (
	statsKeywords = []string{"stats", "statistics", "user data"}
	fetchKeywords = []string{"fetch", "get data", "retrieve"}
)

// DetectTrigger inspects a user message for tool triggers. At most one tool
// runs per turn: the first matching trigger wins. Returns nil when no
// keyword matches.
func DetectTrigger(message string) *Trigger {
	lower := strings.ToLower(message)

	for _, kw := range statsKeywords {
		if strings.Contains(lower, kw) {
			return &Trigger{Tool: "get_user_stats", Args: map[string]interface{}{}}
		}
	}

	for _, kw := range fetchKeywords {
		if strings.Contains(lower, kw) {
			query := "general"
			if strings.Contains(lower, "stats") {
				query = "stats"
			}
			return &Trigger{Tool: "fetch_data", Args: map[string]interface{}{"query": query}}
		}
	}

	return nil
}
