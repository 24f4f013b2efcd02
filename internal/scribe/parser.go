package scribe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseContent decodes the scribe's response, tolerating markdown code fences
// around the JSON.
func ParseContent(responseBody string) (*Content, error) {
	cleaned := stripCodeFences(responseBody)

	var content Content
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return nil, fmt.Errorf("failed to parse scribe response: %w", err)
	}

	if content.DisplayName == "" && content.Description == "" && content.Tags == "" {
		return nil, fmt.Errorf("scribe response has no usable content")
	}

	return &content, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
