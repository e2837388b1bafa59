package receipt

import "strings"

// normalizeResponse strips transport wrapping from raw model text and
// isolates the embedded structured payload.
//
// Strategy, in order: strip a leading fenced-code marker (language-tagged
// first, then bare) and a trailing one; then, if a brace-delimited substring
// exists, take the first maximal one; otherwise pass the text through
// unchanged. Never fails, only improves the odds that strict parsing
// succeeds. Applying it twice yields the same output as once.
func normalizeResponse(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}

	return s
}
