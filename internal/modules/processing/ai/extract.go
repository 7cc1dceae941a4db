package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Document is a parsed JSON object returned by a model.
type Document map[string]any

var fencedBlockRe = regexp.MustCompile("```(?:json|js|html)?\\n([\\s\\S]*?)\\n```")

// ExtractPayload returns the interior of the first fenced code block, or raw unchanged.
func ExtractPayload(raw string) string {
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// ParseDocument extracts the payload from raw and decodes it as a JSON object.
func ParseDocument(raw string) (Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}
	var doc Document
	if err := json.Unmarshal([]byte(strings.TrimSpace(ExtractPayload(raw))), &doc); err != nil || doc == nil {
		return nil, ErrUnparseableResponse
	}
	return doc, nil
}

// String returns the string value at key, or "".
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}
