package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJobIDs parses the legacy flexible jobs_ids column into a fixed list
// of job ids. Three historical encodings exist in production data:
//
//   - a native JSON array:        ["a","b"]
//   - a double-encoded array:     "[\"a\",\"b\"]"
//   - a brace-delimited literal:  {a,b}
//
// Anything else is an error; callers quarantine such rows instead of
// grouping them under a synthetic key.
func DecodeJobIDs(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty jobs_ids value")
	}

	if strings.HasPrefix(trimmed, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(trimmed), &ids); err != nil {
			return nil, fmt.Errorf("malformed jobs_ids array: %w", err)
		}
		return ids, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, fmt.Errorf("malformed double-encoded jobs_ids: %w", err)
		}
		return DecodeJobIDs(inner)
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		body := strings.TrimSuffix(strings.TrimPrefix(trimmed, "{"), "}")
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("empty brace-delimited jobs_ids")
		}
		parts := strings.Split(body, ",")
		ids := make([]string, 0, len(parts))
		for _, p := range parts {
			id := strings.Trim(strings.TrimSpace(p), `"`)
			if id == "" {
				return nil, fmt.Errorf("blank entry in brace-delimited jobs_ids %q", raw)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	return nil, fmt.Errorf("unrecognized jobs_ids encoding %q", raw)
}

// EncodeJobIDs writes job ids in the canonical encoding (JSON array).
func EncodeJobIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
