package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultArchiveBase is the public web archive queried for snapshots.
const DefaultArchiveBase = "https://web.archive.org"

// ArchiveResolver finds the nearest archived capture of a URL. Every failure
// mode (non-200, bad JSON, timeout) collapses to "no snapshot" - this is a
// best-effort enrichment, never a hard dependency.
type ArchiveResolver struct {
	base    string
	fetcher *Fetcher
}

func NewArchiveResolver(base string, fetcher *Fetcher) *ArchiveResolver {
	if base == "" {
		base = DefaultArchiveBase
	}
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	return &ArchiveResolver{base: base, fetcher: fetcher}
}

// FindSnapshot returns the archived URL for the single nearest capture of
// target, or "" when no usable snapshot exists.
func (a *ArchiveResolver) FindSnapshot(ctx context.Context, target string) string {
	query := fmt.Sprintf("%s/cdx/search/cdx?url=%s&output=json&limit=1",
		a.base, url.QueryEscape(target))

	res, err := a.fetcher.Do(ctx, http.MethodGet, query, ProbeTimeout)
	if err != nil || res.Status != http.StatusOK {
		return ""
	}

	// CDX JSON output: a header row followed by data rows of
	// [urlkey, timestamp, original, mimetype, statuscode, digest, length].
	var rows [][]string
	if err := json.Unmarshal(res.Body, &rows); err != nil {
		return ""
	}
	if len(rows) < 2 || len(rows[1]) < 3 {
		return ""
	}

	timestamp, original := rows[1][1], rows[1][2]
	if timestamp == "" || original == "" {
		return ""
	}
	return fmt.Sprintf("%s/web/%s/%s", a.base, timestamp, original)
}
