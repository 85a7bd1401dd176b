package analysis

import "strings"

// extractJSON returns the JSON object in a model reply. Replies may wrap it in
// a markdown fence with any language tag, or put prose before and after it.
func extractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		// Drop the fence's info string, e.g. "json".
		if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimLeft(rest, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
