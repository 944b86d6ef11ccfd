package engine

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a rigorous fact-checking analyst. You investigate claims using web search and respond with structured JSON only.`

const promptTemplate = `Investigate the following claim and decide whether it is REAL, FAKE, or UNCERTAIN.

Use web search to find independent sources. Prefer official bodies, wire services and established outlets. Cite the URLs you actually relied on.

Respond with EXACTLY one JSON object, no markdown fences, in this shape:
{
  "verdict": "REAL|FAKE|UNCERTAIN",
  "confidence": 0-100,
  "headline": "one-line restatement of the claim",
  "analysis": "2-4 sentence assessment",
  "keyFactors": ["short factor", "short factor"],
  "sources": [
    {"title": "page title", "url": "https://...", "snippet": "relevant excerpt", "claimedDate": "YYYY-MM-DD"}
  ]
}

Claim to investigate:
%s`

// BuildPrompt renders the investigation prompt for the given input. Exactly
// one of text/url drives the claim body; an attached image is described so
// the model knows to read it.
func BuildPrompt(text, url string, hasImage bool) string {
	var claim strings.Builder
	if text != "" {
		claim.WriteString(text)
	}
	if url != "" {
		if claim.Len() > 0 {
			claim.WriteString("\n\n")
		}
		claim.WriteString("Claim URL to assess: ")
		claim.WriteString(url)
	}
	if hasImage {
		if claim.Len() > 0 {
			claim.WriteString("\n\n")
		}
		claim.WriteString("An image is attached; extract any claim it contains and assess that claim.")
	}
	return fmt.Sprintf(promptTemplate, claim.String())
}
