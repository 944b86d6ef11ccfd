package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalworks/claimcheck/src/investigator/types"
)

// deadArchive is an archive base guaranteed to be unreachable, so fallback
// resolution reliably yields no snapshot.
func deadArchive() *ArchiveResolver {
	return NewArchiveResolver("http://127.0.0.1:1", NewFetcher())
}

func TestVerify_LivePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>City Council Vote</title>
<meta property="article:published_time" content="2024-03-15"></head></html>`))
	}))
	defer srv.Close()

	v := NewVerifier(NewFetcher(), deadArchive())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	rec := v.Verify(context.Background(), types.CandidateSource{URL: srv.URL + "/story"})
	assert.True(t, rec.Verified)
	assert.Equal(t, http.StatusOK, rec.Status)
	assert.Equal(t, srv.URL+"/story", rec.FinalURL)
	assert.Equal(t, "City Council Vote", rec.Title)
	assert.Equal(t, "2024-03-15", rec.FoundDate)
	assert.Empty(t, rec.ArchivedURL)
	assert.Empty(t, rec.ErrorKind)
	assert.Equal(t, fixed, *rec.VerifiedAt)
}

func TestVerify_HeadRejectedGetSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>Still Here</title></html>"))
	}))
	defer srv.Close()

	v := NewVerifier(NewFetcher(), deadArchive())
	rec := v.Verify(context.Background(), types.CandidateSource{URL: srv.URL})
	assert.True(t, rec.Verified)
	assert.Equal(t, "Still Here", rec.Title)
}

func TestVerify_NotFoundWithSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cdx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[["urlkey","timestamp","original"],["k","20230501120000","` + srv.URL + `/gone"]]`))
	}))
	defer cdx.Close()

	v := NewVerifier(NewFetcher(), NewArchiveResolver(cdx.URL, NewFetcher()))
	rec := v.Verify(context.Background(), types.CandidateSource{URL: srv.URL + "/gone"})
	assert.True(t, rec.Verified)
	assert.Equal(t, cdx.URL+"/web/20230501120000/"+srv.URL+"/gone", rec.ArchivedURL)
	assert.Equal(t, "original-404-archived-found", rec.ErrorKind)
	assert.Empty(t, rec.FinalURL)
}

func TestVerify_NotFoundNoSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	v := NewVerifier(NewFetcher(), deadArchive())
	rec := v.Verify(context.Background(), types.CandidateSource{URL: srv.URL})
	assert.False(t, rec.Verified)
	assert.Equal(t, http.StatusNotFound, rec.Status)
	assert.Equal(t, "http-404", rec.ErrorKind)
	assert.Nil(t, rec.VerifiedAt)
}

func TestVerify_NetworkError(t *testing.T) {
	v := NewVerifier(NewFetcher(), deadArchive())
	rec := v.Verify(context.Background(), types.CandidateSource{URL: "http://127.0.0.1:1/nope"})
	assert.False(t, rec.Verified)
	assert.Equal(t, types.ErrKindNetwork, rec.ErrorKind)
}

func TestVerify_RejectedBeforeNetwork(t *testing.T) {
	v := NewVerifier(NewFetcher(), deadArchive())

	tests := []struct {
		url  string
		kind string
	}{
		{"", types.ErrKindInvalidURL},
		{"not a url", types.ErrKindInvalidURL},
		{"ftp://example.com/file", types.ErrKindInvalidURL},
		{"https://example.com/one-two-three-four-five-six-seven-eight-nine-ten-2024", types.ErrKindInvalidURL},
		{"http://localhost/admin", types.ErrKindPrivateIP},
		{"http://192.168.0.10/panel", types.ErrKindPrivateIP},
	}
	for _, tt := range tests {
		rec := v.Verify(context.Background(), types.CandidateSource{URL: tt.url})
		assert.False(t, rec.Verified, tt.url)
		assert.Equal(t, tt.kind, rec.ErrorKind, tt.url)
	}
}

func TestVerify_DateMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><meta name="datePublished" content="2022-01-10"></html>`))
	}))
	defer srv.Close()

	v := NewVerifier(NewFetcher(), deadArchive())

	rec := v.Verify(context.Background(), types.CandidateSource{URL: srv.URL, ClaimedDate: "2024-05-01"})
	assert.True(t, rec.Verified)
	assert.True(t, rec.DateMismatch)

	rec = v.Verify(context.Background(), types.CandidateSource{URL: srv.URL, ClaimedDate: "2022-01-10"})
	assert.False(t, rec.DateMismatch)
}
