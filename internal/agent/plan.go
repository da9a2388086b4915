package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Structured plan output arrives from models that truncate mid-object, wrap
// JSON in code fences, or prepend prose. Recovery is a fixed sequence of
// repairs, each testable on its own: extract the first brace region, strip
// fences, balance quotes and braces, and as a last resort cut back to the
// final balanced closing brace.

// extractJSON returns the substring starting at the first '{', with code
// fence markers removed.
func extractJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	if i := strings.Index(s, "{"); i >= 0 {
		s = s[i:]
	}
	return strings.TrimSpace(s)
}

// repairTruncatedJSON closes an object that was cut off mid-stream: an odd
// quote count gets a closing quote, then missing closing braces are appended.
func repairTruncatedJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "}") {
		return s
	}
	if strings.Count(s, `"`)%2 != 0 {
		s += `"`
	}
	if open := strings.Count(s, "{") - strings.Count(s, "}"); open > 0 {
		s += strings.Repeat("}", open)
	}
	return s
}

// decodePlan parses model output into a PendingAction, applying the repair
// sequence. It returns an error only when no repair yields valid JSON.
func decodePlan(text string) (PendingAction, error) {
	s := repairTruncatedJSON(extractJSON(text))

	var raw rawPlan
	err := json.Unmarshal([]byte(s), &raw)
	if err == nil {
		return raw.toAction(), nil
	}

	// Trailing garbage after the object: cut back to the last closing brace.
	if i := strings.LastIndex(s, "}"); i >= 0 {
		var retry rawPlan
		if retryErr := json.Unmarshal([]byte(s[:i+1]), &retry); retryErr == nil {
			return retry.toAction(), nil
		}
	}
	return PendingAction{}, fmt.Errorf("%w: %v", ErrMalformed, err)
}

// fallbackPlan is the unconditional safe default when decoding fails: wait,
// with zero confidence so the planner discards it.
func fallbackPlan(reason string) PendingAction {
	return PendingAction{Action: ActionWait, Reason: reason, Confidence: 0}
}
