package llmclient

import "fmt"

// ExtractJSONObject locates the first '{' in text and returns the
// substring up to its matching '}', balancing braces in a string-aware
// way so that braces inside quoted JSON strings (including escaped
// quotes) are not mistaken for structure. This strips any leading or
// trailing fences and chatter the model emits around the JSON object.
func ExtractJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	if start == -1 {
		return "", fmt.Errorf("llmclient: no JSON object found in response")
	}
	return "", fmt.Errorf("llmclient: unbalanced JSON object in response")
}
