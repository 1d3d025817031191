package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseResult turns raw model output into a Result. Models routinely wrap
// JSON in markdown fences; those are stripped before unmarshaling. Anything
// that still fails to parse is reported as ErrMalformedResult.
func parseResult(raw string) (*Result, error) {
	text := stripFences(raw)

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	// A neutral rating when the model omitted or overshot the 1-5 scale.
	if result.Satisfaction < 1 || result.Satisfaction > 5 {
		result.Satisfaction = 3
	}

	return &result, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}
