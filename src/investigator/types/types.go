package types

import "time"

// Verdict is the top-level classification produced by the model.
type Verdict string

const (
	VerdictReal      Verdict = "REAL"
	VerdictFake      Verdict = "FAKE"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// Normalize maps free-form model output onto a known verdict.
func (v Verdict) Normalize() Verdict {
	switch v {
	case VerdictReal, VerdictFake, VerdictUncertain:
		return v
	}
	return VerdictUncertain
}

// Error kinds recorded on a VerificationRecord. Status-based failures use
// "http-<code>" (see HTTPErrorKind); archive rescues annotate the original
// kind, e.g. "original-404-archived-found".
const (
	ErrKindInvalidURL = "invalid-url"
	ErrKindPrivateIP  = "private-ip-blocked"
	ErrKindTimeout    = "timeout"
	ErrKindNetwork    = "network-error"
	ErrKindNoSnapshot = "no-archive-snapshot"
)

// CandidateSource is a source proposed by the model or the search-grounding
// provider. Ephemeral; never persisted.
type CandidateSource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet,omitempty"`
	ClaimedDate string `json:"claimedDate,omitempty"`
}

// VerificationRecord is the verifier's immutable output for one URL.
// Invariant: Verified implies exactly one of FinalURL or ArchivedURL is set.
type VerificationRecord struct {
	URL          string     `json:"url"`
	Verified     bool       `json:"verified"`
	Status       int        `json:"status,omitempty"`
	FinalURL     string     `json:"finalUrl,omitempty"`
	ArchivedURL  string     `json:"archivedUrl,omitempty"`
	Title        string     `json:"title,omitempty"`
	FoundDate    string     `json:"foundDate,omitempty"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`
	ErrorKind    string     `json:"errorKind,omitempty"`
	DateMismatch bool       `json:"dateMismatch,omitempty"`
}

// RankedSource merges a candidate with its verification outcome.
type RankedSource struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet,omitempty"`
	Verified     bool   `json:"verified"`
	Status       int    `json:"status,omitempty"`
	FinalURL     string `json:"finalUrl,omitempty"`
	ArchivedURL  string `json:"archivedUrl,omitempty"`
	FoundDate    string `json:"foundDate,omitempty"`
	ErrorKind    string `json:"errorKind,omitempty"`
	DateMismatch bool   `json:"dateMismatch,omitempty"`
}

// ModelVerdict is the tolerantly parsed model response.
type ModelVerdict struct {
	Verdict    Verdict           `json:"verdict"`
	Confidence int               `json:"confidence"`
	Headline   string            `json:"headline"`
	Analysis   string            `json:"analysis"`
	KeyFactors []string          `json:"keyFactors"`
	Sources    []CandidateSource `json:"sources"`
}

// InvestigationResult is the scored, source-ranked verdict returned to the client.
type InvestigationResult struct {
	Verdict          Verdict        `json:"verdict"`
	Confidence       int            `json:"confidence"`
	ConfidenceReason string         `json:"confidenceReason"`
	Headline         string         `json:"headline"`
	Analysis         string         `json:"analysis"`
	KeyFactors       []string       `json:"keyFactors"`
	Sources          []RankedSource `json:"sources"`
}

// GroundingMetadata summarizes the search-grounding signal attached to a
// model response.
type GroundingMetadata struct {
	SearchQueries []string `json:"searchQueries,omitempty"`
	ChunkCount    int      `json:"chunkCount"`
	FoundEvidence bool     `json:"foundEvidence"`
}

// InvestigateRequest is the inbound body of POST /v1/investigate.
type InvestigateRequest struct {
	Text      string `json:"text,omitempty"`
	URL       string `json:"url,omitempty"`
	Image     string `json:"image,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// InvestigateResponse is the success payload.
type InvestigateResponse struct {
	Result            InvestigationResult `json:"result"`
	GroundingMetadata *GroundingMetadata  `json:"groundingMetadata,omitempty"`
	QuotaRemaining    int                 `json:"quotaRemaining"`
	Cached            bool                `json:"cached,omitempty"`
}
