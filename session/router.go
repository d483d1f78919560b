package session

import "strings"

// Mode is the conversation framing, fixed by the first user message
type Mode string

const (
	ModeAnalytical Mode = "analytical"
	ModeCasual     Mode = "casual"
)

var analyticalKeywords = []string{
	"analyze", "data", "statistics", "report",
	"metrics", "performance", "technical",
}

// DetectMode classifies the first user message. Pure and deterministic:
// any analytical keyword (case-insensitive) selects analytical, otherwise
// casual.
func DetectMode(firstMessage string) Mode {
	lower := strings.ToLower(firstMessage)
	for _, kw := range analyticalKeywords {
		if strings.Contains(lower, kw) {
			return ModeAnalytical
		}
	}
	return ModeCasual
}

// SystemPrompt returns the framing text handed to the generator for a mode
func SystemPrompt(mode Mode) string {
	switch mode {
	case ModeAnalytical:
		return "You are a professional data analyst assistant. " +
			"Provide detailed, technical responses with data-driven insights. " +
			"Be precise and analytical in your communication."
	default:
		return "You are a friendly and helpful AI assistant. " +
			"Provide clear, conversational responses. " +
			"Be warm and approachable in your communication."
	}
}
