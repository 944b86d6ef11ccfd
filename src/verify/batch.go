package verify

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/signalworks/claimcheck/src/investigator/types"
)

const (
	// MaxVerify caps how many incoming candidates are verified at all.
	MaxVerify = 10
	// MaxDisplay caps each ranked partition handed back to the client.
	MaxDisplay = 5
	// DefaultConcurrency bounds simultaneous in-flight verifications.
	DefaultConcurrency = 3
)

// Batch verifies a bounded set of candidates concurrently and ranks the
// outcomes verified-first.
type Batch struct {
	verifier      *Verifier
	maxConcurrent int
}

func NewBatch(verifier *Verifier, maxConcurrent int) *Batch {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultConcurrency
	}
	return &Batch{verifier: verifier, maxConcurrent: maxConcurrent}
}

// VerifyAll verifies up to MaxVerify deduplicated candidates. One candidate's
// failure never aborts the others; a cancelled context downgrades remaining
// candidates to unverified rather than failing the batch. Ranking is stable:
// within each partition, first-observed order is preserved.
func (b *Batch) VerifyAll(ctx context.Context, candidates []types.CandidateSource) []types.RankedSource {
	deduped := dedupe(candidates)
	if len(deduped) > MaxVerify {
		deduped = deduped[:MaxVerify]
	}

	records := make([]types.VerificationRecord, len(deduped))
	semaphore := make(chan struct{}, b.maxConcurrent)
	var wg sync.WaitGroup

	for i, candidate := range deduped {
		wg.Add(1)
		go func(index int, src types.CandidateSource) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				records[index] = types.VerificationRecord{
					URL:       src.URL,
					ErrorKind: types.ErrKindTimeout,
				}
				return
			}

			records[index] = b.verifier.Verify(ctx, src)
		}(i, candidate)
	}
	wg.Wait()

	verified := make([]types.RankedSource, 0, len(deduped))
	unverified := make([]types.RankedSource, 0, len(deduped))
	for i, candidate := range deduped {
		ranked := merge(candidate, records[i])
		if ranked.Verified {
			verified = append(verified, ranked)
		} else {
			unverified = append(unverified, ranked)
		}
	}
	log.Printf("verify: batch done (%d candidates, %d verified)", len(deduped), len(verified))

	if len(verified) > MaxDisplay {
		verified = verified[:MaxDisplay]
	}
	if len(unverified) > MaxDisplay {
		unverified = unverified[:MaxDisplay]
	}
	out := append(verified, unverified...)
	if len(out) > MaxDisplay {
		out = out[:MaxDisplay]
	}
	return out
}

func merge(src types.CandidateSource, rec types.VerificationRecord) types.RankedSource {
	title := src.Title
	if title == "" {
		title = rec.Title
	}
	return types.RankedSource{
		Title:        title,
		URL:          src.URL,
		Snippet:      src.Snippet,
		Verified:     rec.Verified,
		Status:       rec.Status,
		FinalURL:     rec.FinalURL,
		ArchivedURL:  rec.ArchivedURL,
		FoundDate:    rec.FoundDate,
		ErrorKind:    rec.ErrorKind,
		DateMismatch: rec.DateMismatch,
	}
}

func dedupe(candidates []types.CandidateSource) []types.CandidateSource {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]types.CandidateSource, 0, len(candidates))
	for _, c := range candidates {
		key := normalizeURL(c.URL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// MergeSourceLists combines grounding-derived sources with model-provided
// ones, matching by normalized domain. The grounding snippet wins; the
// model's fills in only when grounding's is empty. Unmatched entries from
// both lists are kept in first-observed order.
func MergeSourceLists(grounding, model []types.CandidateSource) []types.CandidateSource {
	if len(grounding) == 0 {
		return model
	}

	merged := make([]types.CandidateSource, len(grounding))
	copy(merged, grounding)
	byDomain := make(map[string]int, len(grounding))
	for i, g := range grounding {
		if d := normalizeDomain(g.URL); d != "" {
			byDomain[d] = i
		}
	}

	for _, m := range model {
		if i, ok := byDomain[normalizeDomain(m.URL)]; ok {
			if merged[i].Snippet == "" {
				merged[i].Snippet = m.Snippet
			}
			if merged[i].Title == "" {
				merged[i].Title = m.Title
			}
			if merged[i].ClaimedDate == "" {
				merged[i].ClaimedDate = m.ClaimedDate
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// normalizeDomain lowercases a URL's host and drops a www. prefix.
func normalizeDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
