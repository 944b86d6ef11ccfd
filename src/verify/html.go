package verify

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var titlePolicy = bluemonday.StrictPolicy()

// ExtractTitle returns the text of the first <title> element, stripped of any
// markup, or "" when none is present.
func ExtractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				if tokenizer.Next() == html.TextToken {
					title := strings.TrimSpace(string(tokenizer.Text()))
					return strings.TrimSpace(titlePolicy.Sanitize(title))
				}
				return ""
			}
		}
	}
}

var (
	metaDateRe = regexp.MustCompile(`(?i)<meta[^>]+(?:property|name|itemprop)=["'](?:article:published_time|og:published_time|datePublished|publish-date|publication_date|pubdate|date)["'][^>]*content=["']([^"']+)["']`)

	// content attribute before the property attribute
	metaDateReversedRe = regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]*(?:property|name|itemprop)=["'](?:article:published_time|og:published_time|datePublished|publish-date|publication_date|pubdate|date)["']`)

	jsonLDDateRe = regexp.MustCompile(`"datePublished"\s*:\s*"([^"]+)"`)

	genericDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4})\b`)
)

// ExtractPublishDate scans HTML for a publication date: explicit metadata
// tags first, then JSON-LD, then any generic date-looking text. Best effort;
// "" means nothing plausible was found.
func ExtractPublishDate(body []byte) string {
	for _, re := range []*regexp.Regexp{metaDateRe, metaDateReversedRe, jsonLDDateRe} {
		if m := re.FindSubmatch(body); m != nil {
			return strings.TrimSpace(string(m[1]))
		}
	}
	if m := genericDateRe.FindSubmatch(body); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

// IsHTMLContent reports whether a Content-Type header indicates an HTML page.
func IsHTMLContent(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// DatesDisagree compares a claimed publication date against one found on the
// page. Deliberately loose: both are truncated to calendar-date precision and
// the pair only disagrees when neither string contains the other, which
// tolerates format drift between sources.
func DatesDisagree(claimed, found string) bool {
	a := truncateToDate(claimed)
	b := truncateToDate(found)
	if a == "" || b == "" {
		return false
	}
	return !strings.Contains(a, b) && !strings.Contains(b, a)
}

func truncateToDate(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// ISO timestamps truncate to the leading yyyy-mm-dd.
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}
