package verify

import (
	"net/url"
	"regexp"
	"strings"
)

// Markers identifying a search-grounding redirect/proxy URL rather than a
// real source.
var proxyMarkers = []string{
	"vertexaisearch.cloud.google.com",
	"grounding-api-redirect",
}

// Query parameters commonly carrying the real destination of a redirect URL,
// in resolution priority order.
var redirectParams = []string{"u", "url", "q", "r", "redirect", "target"}

var (
	encodedURLRe  = regexp.MustCompile(`(?i)https?%3A%2F%2F[A-Za-z0-9%._~:/?#\[\]@!$&'()*+,;=-]+`)
	embeddedURLRe = regexp.MustCompile(`https?://[^\s"'<>\)]+`)
)

// IsProxyURL reports whether a URL looks like a grounding provider's opaque
// redirect rather than the true source.
func IsProxyURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range proxyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ResolveRealURL unwraps a proxy/redirect URL into the underlying source URL.
// Heuristics are tried in priority order; the first success wins. When none
// apply, the original URL is returned and verification proceeds against it
// as-is.
//
//  1. an explicit retrieved-context URI, unless it is itself a proxy;
//  2. a known redirect query parameter whose decoded value is HTTP(S);
//  3. a percent-encoded http(s):// pattern anywhere in the URL;
//  4. an HTTP(S)-looking substring in the human-readable title.
func ResolveRealURL(rawURL, titleHint, retrievedContextURI string) string {
	if uri := strings.TrimSpace(retrievedContextURI); uri != "" && !IsProxyURL(uri) && isHTTPURL(uri) {
		return uri
	}

	if u, err := url.Parse(rawURL); err == nil {
		q := u.Query()
		for _, param := range redirectParams {
			if v := q.Get(param); isHTTPURL(v) {
				return v
			}
		}
	}

	if m := encodedURLRe.FindString(rawURL); m != "" {
		if decoded, err := url.QueryUnescape(m); err == nil && isHTTPURL(decoded) {
			return decoded
		}
	}

	if m := embeddedURLRe.FindString(titleHint); m != "" {
		return strings.TrimRight(m, ".,;")
	}

	return rawURL
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
