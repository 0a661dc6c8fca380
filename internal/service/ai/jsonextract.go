package ai

import (
	"fmt"
	"strings"
)

// extractJSONObject returns the first balanced brace-delimited substring of
// raw. Models sometimes wrap the JSON in prose or code fences; this walks the
// text tracking brace depth and string state instead of trusting the outer
// shape.
func extractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object in model output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return stripControlChars(raw[start : i+1]), nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in model output")
}

// stripControlChars drops raw control bytes that some models leak into
// string literals, which encoding/json rejects. Whitespace between tokens is
// insignificant in JSON, so dropping newlines wholesale is safe.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
