// Package score converts a verdict plus verification outcomes into a
// bounded, explainable confidence value. The formula is deterministic and
// every point of the final number is traceable to a named rule.
package score

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/signalworks/claimcheck/src/investigator/types"
)

const (
	// Floor and ceiling of every score: some baseline plausibility check
	// always happened, and the system never claims near-certainty.
	Floor   = 60
	Ceiling = 95

	baseReal      = 75
	baseFake      = 72
	baseUncertain = 65

	bonusAnyVerified   = 5
	bonusThreeVerified = 8
	bonusTrustedDomain = 8
	bonusGrounding     = 4

	penaltyPerUnverified = 5
	penaltyUnverifiedCap = 10
	penaltyDateMismatch  = 4
)

// trustedDomains is the fixed allowlist of government, wire-service and
// flagship outlets whose presence among verified sources raises confidence.
var trustedDomains = []string{
	"reuters.com",
	"apnews.com",
	"afp.com",
	"bbc.com",
	"bbc.co.uk",
	"nytimes.com",
	"washingtonpost.com",
	"theguardian.com",
	"wsj.com",
	"bloomberg.com",
	"npr.org",
	"economist.com",
	"nature.com",
	"science.org",
	"who.int",
	"un.org",
	"europa.eu",
	"gov.uk",
	"nasa.gov",
	"nih.gov",
	"cdc.gov",
}

// Score computes the confidence value and the ordered explanation of which
// rules fired. groundingFound reports whether the upstream search-grounding
// signal independently returned evidence.
func Score(verdict types.Verdict, sources []types.RankedSource, groundingFound bool) (int, string) {
	var reasons []string

	value := baseUncertain
	switch verdict.Normalize() {
	case types.VerdictReal:
		value = baseReal
	case types.VerdictFake:
		value = baseFake
	}
	reasons = append(reasons, fmt.Sprintf("base %d for verdict %s", value, verdict.Normalize()))

	verified := 0
	unverified := 0
	trusted := false
	dateMismatch := false
	for _, s := range sources {
		if s.Verified {
			verified++
			if isTrustedDomain(s.URL) || isTrustedDomain(s.FinalURL) {
				trusted = true
			}
		} else {
			unverified++
		}
		if s.DateMismatch {
			dateMismatch = true
		}
	}

	if verified >= 1 {
		value += bonusAnyVerified
		reasons = append(reasons, fmt.Sprintf("+%d for %d verified source(s)", bonusAnyVerified, verified))
	}
	if verified >= 3 {
		value += bonusThreeVerified
		reasons = append(reasons, fmt.Sprintf("+%d for 3+ verified sources", bonusThreeVerified))
	}
	if trusted {
		value += bonusTrustedDomain
		reasons = append(reasons, fmt.Sprintf("+%d for trusted domain among verified sources", bonusTrustedDomain))
	}
	if unverified > 0 {
		penalty := unverified * penaltyPerUnverified
		if penalty > penaltyUnverifiedCap {
			penalty = penaltyUnverifiedCap
		}
		value -= penalty
		reasons = append(reasons, fmt.Sprintf("-%d for %d unverified source(s)", penalty, unverified))
	}
	if groundingFound {
		value += bonusGrounding
		reasons = append(reasons, fmt.Sprintf("+%d for search grounding evidence", bonusGrounding))
	}
	if dateMismatch {
		value -= penaltyDateMismatch
		reasons = append(reasons, fmt.Sprintf("-%d for publication date mismatch", penaltyDateMismatch))
	}

	if value < Floor {
		value = Floor
	}
	if value > Ceiling {
		value = Ceiling
	}

	return value, strings.Join(reasons, "; ")
}

func isTrustedDomain(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range trustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
