package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON reports model output that holds no JSON object at all.
var ErrNoJSON = errors.New("no JSON object in model output")

// DecodeModelJSON decodes a structured model response into v. Markdown code fences and
// chatter around the object are tolerated: the outermost {...} span is decoded when the
// whole text is not valid JSON.
func DecodeModelJSON(outputText string, v any) error {
	s := stripCodeFence(strings.TrimSpace(outputText))
	if s == "" {
		return fmt.Errorf("DecodeModelJSON: %w (empty output)", ErrNoJSON)
	}
	if json.Valid([]byte(s)) {
		return json.Unmarshal([]byte(s), v)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("DecodeModelJSON: %w (len=%d)", ErrNoJSON, len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("DecodeModelJSON: object at %d..%d: %w", start, end, err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. ```json.
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
