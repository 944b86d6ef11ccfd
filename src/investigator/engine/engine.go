// Package engine orchestrates one investigation: cache lookup, the model
// exchange, source verification, confidence scoring and write-back.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/signalworks/claimcheck/src/ai/core"
	"github.com/signalworks/claimcheck/src/cache"
	"github.com/signalworks/claimcheck/src/data"
	"github.com/signalworks/claimcheck/src/investigator/types"
	"github.com/signalworks/claimcheck/src/score"
	"github.com/signalworks/claimcheck/src/verify"
)

// Input is one normalized investigation request. Image holds decoded bytes,
// not the data URI.
type Input struct {
	Text      string
	URL       string
	Image     []byte
	ImageMIME string
}

// Engine wires the collaborators of a single investigation together.
type Engine struct {
	model   core.Client
	batch   *verify.Batch
	cache   *cache.Cache
	history *data.History
}

func New(model core.Client, batch *verify.Batch, respCache *cache.Cache, history *data.History) *Engine {
	return &Engine{model: model, batch: batch, cache: respCache, history: history}
}

// Investigate runs the full pipeline. The returned response has
// QuotaRemaining unset; the HTTP layer owns that number. An error here
// means the upstream model was unavailable - per-source verification
// failures and parse failures are absorbed earlier.
func (e *Engine) Investigate(ctx context.Context, in Input, sessionKey string) (*types.InvestigateResponse, error) {
	fingerprint := cache.Fingerprint(in.Text, in.URL, in.Image)

	if raw, ok := e.cache.Get(ctx, fingerprint); ok {
		var cached types.InvestigateResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			cached.Cached = true
			log.Printf("engine: cache hit %s", fingerprint)
			return &cached, nil
		}
		log.Printf("engine: discarding undecodable cache entry %s", fingerprint)
	}

	modelResp, err := e.model.Respond(ctx, core.Input{
		Prompt:    BuildPrompt(in.Text, in.URL, len(in.Image) > 0),
		ImageMIME: in.ImageMIME,
		ImageData: in.Image,
	}, core.Options{
		SystemPrompt:    systemPrompt,
		EnableWebSearch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: model exchange: %w", err)
	}

	verdict, parsed := ParseVerdict(modelResp.Text)
	if !parsed {
		log.Printf("engine: model reply was not parseable JSON, degraded to %s", verdict.Verdict)
	}

	candidates := verify.MergeSourceLists(groundingCandidates(modelResp.Grounding), verdict.Sources)
	ranked := e.batch.VerifyAll(ctx, candidates)
	if ranked == nil {
		ranked = []types.RankedSource{}
	}

	groundingFound := modelResp.Grounding.FoundEvidence()
	confidence, reason := score.Score(verdict.Verdict, ranked, groundingFound)

	resp := &types.InvestigateResponse{
		Result: types.InvestigationResult{
			Verdict:          verdict.Verdict,
			Confidence:       confidence,
			ConfidenceReason: reason,
			Headline:         verdict.Headline,
			Analysis:         verdict.Analysis,
			KeyFactors:       verdict.KeyFactors,
			Sources:          ranked,
		},
		GroundingMetadata: groundingSummary(modelResp.Grounding),
	}

	e.recordHistory(fingerprint, sessionKey, resp)

	if payload, err := json.Marshal(resp); err == nil {
		e.cache.Put(ctx, fingerprint, payload)
	}

	return resp, nil
}

// groundingCandidates converts grounding chunks into candidate sources,
// unwrapping provider redirect URLs along the way.
func groundingCandidates(g *core.Grounding) []types.CandidateSource {
	if g == nil {
		return nil
	}
	out := make([]types.CandidateSource, 0, len(g.Sources))
	for _, src := range g.Sources {
		realURL := verify.ResolveRealURL(src.URI, src.Title, src.RetrievedContextURI)
		if realURL == "" {
			continue
		}
		out = append(out, types.CandidateSource{
			Title: src.Title,
			URL:   realURL,
		})
	}
	return out
}

func groundingSummary(g *core.Grounding) *types.GroundingMetadata {
	if g == nil {
		return nil
	}
	return &types.GroundingMetadata{
		SearchQueries: g.SearchQueries,
		ChunkCount:    len(g.Sources),
		FoundEvidence: g.FoundEvidence(),
	}
}

func (e *Engine) recordHistory(fingerprint, sessionKey string, resp *types.InvestigateResponse) {
	if e.history == nil {
		return
	}
	verified := 0
	for _, s := range resp.Result.Sources {
		if s.Verified {
			verified++
		}
	}
	e.history.Record(data.Investigation{
		Fingerprint:     fingerprint,
		SessionKey:      sessionKey,
		Verdict:         string(resp.Result.Verdict),
		Confidence:      resp.Result.Confidence,
		Headline:        resp.Result.Headline,
		VerifiedSources: verified,
		TotalSources:    len(resp.Result.Sources),
	})
}
