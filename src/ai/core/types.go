package core

import "context"

// Input is the material handed to the model for one investigation: the
// rendered prompt plus an optional inline image.
type Input struct {
	Prompt    string
	ImageMIME string
	ImageData []byte
}

// GroundingSource is one search-derived evidence pointer attached to a
// response. URI may be an opaque provider redirect; RetrievedContextURI,
// when present, points at the underlying document.
type GroundingSource struct {
	URI                 string
	Title               string
	RetrievedContextURI string
}

// Grounding is the search-grounding signal attached to a model response.
type Grounding struct {
	Sources       []GroundingSource
	SearchQueries []string
}

// FoundEvidence reports whether the provider's search pass surfaced anything.
func (g *Grounding) FoundEvidence() bool {
	return g != nil && len(g.Sources) > 0
}

// Response is the raw model output before any verdict parsing.
type Response struct {
	Text      string
	Grounding *Grounding
}

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
	EnableWebSearch     bool
}

// Client is a provider-agnostic interface for the single structured
// exchange this service performs.
type Client interface {
	Respond(ctx context.Context, input Input, opts Options) (*Response, error)
}
