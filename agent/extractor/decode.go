package extractor

import "encoding/json"

// decodeObject recovers a JSON object from model output that may be wrapped
// in code fences or surrounding prose. It locates the first balanced
// top-level object (string-aware) and unmarshals it; anything outside the
// braces is ignored.
func decodeObject(raw string) (map[string]any, bool) {
	candidate, ok := firstObject(raw)
	if !ok {
		return nil, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func firstObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
