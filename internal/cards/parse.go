package cards

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes raw model output into a validated ResponseData. The model is
// treated as an unreliable I/O boundary: markdown fences are stripped and, if
// direct decoding fails, the outermost JSON object is extracted before giving
// up. The returned response is always valid per Validate.
func Parse(raw string) (ResponseData, error) {
	cleaned := stripFences(raw)

	var data ResponseData
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		extracted, ok := extractObject(cleaned)
		if !ok {
			return ResponseData{}, fmt.Errorf("cards: no JSON object in model response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &data); err != nil {
			return ResponseData{}, fmt.Errorf("cards: unmarshal model response: %w", err)
		}
	}

	if err := data.Validate(); err != nil {
		return ResponseData{}, err
	}
	return data, nil
}

// stripFences removes ```json / ``` wrappers the model was told not to emit
// but sometimes emits anyway.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
