package verify

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Heuristics for spotting model-fabricated article URLs. These are pinned by
// the test suite; tune the constants, not the shape.
const (
	maxPathSegments = 15
	maxNumericRun   = 12
)

var (
	// Canonical fabricated-article shape: nine-plus hyphenated words ending
	// in a number, e.g. /official-report-confirms-city-bans-cars-from-downtown-area-2024.
	articleSlugRe = regexp.MustCompile(`/(?:[a-z0-9]+-){9,}[a-z0-9]*\d+/?$`)

	longNumericRunRe = regexp.MustCompile(`\d{13,}`)
)

// Domains that legitimately carry very long numeric IDs in their paths.
var numericIDDomains = []string{
	"youtube.com",
	"youtu.be",
	"twitter.com",
	"x.com",
	"facebook.com",
	"instagram.com",
	"tiktok.com",
	"linkedin.com",
	"t.me",
}

// IsLikelyHallucinated reports whether a URL looks fabricated rather than
// retrieved. Any heuristic firing rejects the URL before a network call.
func IsLikelyHallucinated(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	path := strings.ToLower(u.Path)

	segments := 0
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '-' || r == '_' || r == '/'
	}) {
		if len(seg) > 2 {
			segments++
		}
	}
	if segments > maxPathSegments {
		return true
	}

	if articleSlugRe.MatchString(path) {
		return true
	}

	if longNumericRunRe.MatchString(rawURL) && !isNumericIDDomain(u.Hostname()) {
		return true
	}

	return false
}

func isNumericIDDomain(host string) bool {
	host = strings.ToLower(host)
	for _, d := range numericIDDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsPrivateTarget reports whether a hostname points at loopback, RFC1918,
// link-local or IPv6 loopback/link-local space. Coarse SSRF guard, applied
// before any network call touches the host.
func IsPrivateTarget(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(strings.Trim(host, "[]"))
	if ip == nil {
		// Not an IP literal; DNS resolution is out of scope for this guard.
		return false
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
