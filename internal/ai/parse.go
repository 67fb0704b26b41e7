package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/psychly/internal/apperr"
)

// cleanJSON strips the markdown fences models like to wrap JSON in
func cleanJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	// keep only the outermost object if the model added chatter around it
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

func decodeJSON(text string, v any) error {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", apperr.ErrParse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	return nil
}
