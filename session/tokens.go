package session

import (
	"log"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

// countTokens reports the model-token count of an assistant reply using the
// cl100k_base encoding. The encoder is loaded once per process; if loading
// fails we fall back to a whitespace word count rather than failing the turn.
func countTokens(text string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			log.Printf("[WARN] tiktoken encoding unavailable, using word counts: %v", err)
			return
		}
		encoder = enc
	})
	if encoder == nil {
		return len(strings.Fields(text))
	}
	return len(encoder.Encode(text, nil, nil))
}
