package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/signalworks/claimcheck/src/investigator/types"
)

// Verifier checks a single candidate URL: sanity filter, HEAD probe, GET,
// then archive fallback. The resulting record is never mutated after return.
type Verifier struct {
	fetcher *Fetcher
	archive *ArchiveResolver
	now     func() time.Time
}

func NewVerifier(fetcher *Fetcher, archive *ArchiveResolver) *Verifier {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	if archive == nil {
		archive = NewArchiveResolver("", fetcher)
	}
	return &Verifier{fetcher: fetcher, archive: archive, now: time.Now}
}

// Verify runs the full verification state machine for one candidate.
// It never returns an error: every failure mode is folded into the record.
func (v *Verifier) Verify(ctx context.Context, src types.CandidateSource) types.VerificationRecord {
	rec := types.VerificationRecord{URL: src.URL}

	// SanityCheck: reject without touching the network.
	target := strings.TrimSpace(src.URL)
	parsed, err := url.Parse(target)
	if target == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		rec.ErrorKind = types.ErrKindInvalidURL
		return rec
	}
	if IsLikelyHallucinated(target) {
		rec.ErrorKind = types.ErrKindInvalidURL
		return rec
	}
	if IsPrivateTarget(parsed.Hostname()) {
		rec.ErrorKind = types.ErrKindPrivateIP
		return rec
	}

	// ProbeHead: cheap existence check. Some servers reject HEAD outright,
	// so a failure here means "try GET", not "unverified".
	var result *FetchResult
	if head, err := v.fetcher.Do(ctx, http.MethodHead, target, ProbeTimeout); err == nil && head.Success() {
		result = head
	}

	var failKind string
	if result == nil {
		got, err := v.fetcher.Do(ctx, http.MethodGet, target, FetchTimeout)
		switch {
		case errors.Is(err, ErrTimeout):
			failKind = types.ErrKindTimeout
		case err != nil:
			failKind = types.ErrKindNetwork
		case !got.Success():
			rec.Status = got.Status
			failKind = fmt.Sprintf("http-%d", got.Status)
		default:
			result = got
		}
	} else if result.Body == nil && IsHTMLContent(result.ContentType) {
		// HEAD succeeded but carries no body; refetch for title/date.
		if got, err := v.fetcher.Do(ctx, http.MethodGet, target, FetchTimeout); err == nil && got.Success() {
			result = got
		}
	}

	if result != nil {
		rec.Status = result.Status
		rec.FinalURL = result.FinalURL
		if IsHTMLContent(result.ContentType) && len(result.Body) > 0 {
			rec.Title = ExtractTitle(result.Body)
			rec.FoundDate = ExtractPublishDate(result.Body)
		}
		rec.Verified = true
		now := v.now()
		rec.VerifiedAt = &now
		if src.ClaimedDate != "" && rec.FoundDate != "" {
			rec.DateMismatch = DatesDisagree(src.ClaimedDate, rec.FoundDate)
		}
		return rec
	}

	// ArchiveFallback: the live page is gone or unreachable; a snapshot
	// still counts as verification.
	if snapshot := v.archive.FindSnapshot(ctx, target); snapshot != "" {
		rec.Verified = true
		rec.ArchivedURL = snapshot
		rec.ErrorKind = archivedKind(failKind)
		now := v.now()
		rec.VerifiedAt = &now
		return rec
	}

	rec.Verified = false
	rec.ErrorKind = failKind
	return rec
}

// archivedKind annotates a rescue, e.g. "original-404-archived-found".
func archivedKind(failKind string) string {
	base := strings.TrimPrefix(failKind, "http-")
	if base == "" {
		base = "unreachable"
	}
	return fmt.Sprintf("original-%s-archived-found", base)
}
