package engine

import (
	"encoding/json"
	"strings"

	"github.com/signalworks/claimcheck/src/investigator/types"
)

// ParseVerdict tolerantly extracts the first well-formed JSON object from a
// model response. Models wrap JSON in prose or markdown fences often enough
// that strict decoding is a losing game; on total failure the caller gets a
// synthesized UNCERTAIN verdict instead of an error, so a malformed model
// reply never fails the request.
func ParseVerdict(raw string) (types.ModelVerdict, bool) {
	candidate := firstJSONObject(raw)
	if candidate != "" {
		var v types.ModelVerdict
		if err := json.Unmarshal([]byte(candidate), &v); err == nil && v.Verdict != "" {
			v.Verdict = v.Verdict.Normalize()
			return v, true
		}
	}
	return synthesizeUncertain(raw), false
}

// firstJSONObject scans for the first balanced top-level {...} block,
// honoring string literals and escapes.
func firstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func synthesizeUncertain(raw string) types.ModelVerdict {
	analysis := strings.TrimSpace(raw)
	if len(analysis) > 400 {
		analysis = analysis[:400]
	}
	if analysis == "" {
		analysis = "The model returned no usable analysis."
	}
	return types.ModelVerdict{
		Verdict:    types.VerdictUncertain,
		Confidence: 0,
		Headline:   "Unable to reach a structured verdict",
		Analysis:   analysis,
		KeyFactors: []string{"model response could not be parsed"},
	}
}
