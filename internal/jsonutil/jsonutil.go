// Package jsonutil provides JSON formatting helpers for the console and
// replay reports, with recursive expansion of JSON-in-string values.
package jsonutil

import (
	"encoding/json"
	"strings"
)

// Pretty formats a JSON document with indentation. Tool result text that is
// itself JSON gets expanded in place so nested payloads stay readable.
// Input that is not valid JSON is returned unchanged.
func Pretty(value string) string {
	var doc interface{}
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		return value
	}

	pretty, err := json.MarshalIndent(expandNested(doc), "", "  ")
	if err != nil {
		return value
	}
	return string(pretty)
}

// PrettyBytes is Pretty for raw message bytes
func PrettyBytes(data []byte) string {
	return Pretty(string(data))
}

// expandNested recursively replaces string values that hold JSON objects or
// arrays with their parsed form.
func expandNested(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			result[key] = expandNested(val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			result[i] = expandNested(val)
		}
		return result
	case string:
		if looksLikeJSON(v) {
			var nested interface{}
			if err := json.Unmarshal([]byte(v), &nested); err == nil {
				return expandNested(nested)
			}
		}
		return v
	default:
		return v
	}
}

// looksLikeJSON reports whether a string plausibly holds a JSON object or
// array. Plain strings and bare numbers are left alone.
func looksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return false
	}
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}
