package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFragmentPattern = regexp.MustCompile(`\{[\s\S]*\}|\[[\s\S]*\]`)

// parseStructured decodes a model completion that is expected to be JSON.
// Markdown fences are stripped first; if the cleaned text still fails to
// parse, one fallback pass scans for the first JSON object or array
// embedded in surrounding prose before giving up.
func parseStructured(raw string, v any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if match := jsonFragmentPattern.FindString(cleaned); match != "" {
		if err := json.Unmarshal([]byte(match), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no valid JSON in completion (raw: %.200s)", raw)
}
