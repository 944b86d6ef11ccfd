package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/signalworks/claimcheck/src/ai/core"
	"github.com/signalworks/claimcheck/src/webclient"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModelName = "gemini-2.5-flash"
	defaultMaxTokens = 4096
)

func init() {
	core.RegisterProvider("gemini", newClient, "gemini25")
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}

	model := cfg.Model
	if strings.TrimSpace(model) == "" {
		model = defaultModelName
	}

	baseURL := defaultBaseURL
	if cfg.Extra != nil && cfg.Extra["base_url"] != "" {
		baseURL = strings.TrimSuffix(cfg.Extra["base_url"], "/")
	}

	return &client{
		apiKey:     cfg.GeminiKey,
		baseURL:    baseURL,
		httpClient: webclient.NewDefault(90 * time.Second),
		defaults: core.Options{
			Model:               model,
			Temperature:         orFloat(cfg.Temperature, 0.2),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, defaultMaxTokens),
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Respond(ctx context.Context, input core.Input, opts core.Options) (*core.Response, error) {
	merged := c.merge(opts)

	parts := []map[string]interface{}{
		{"text": input.Prompt},
	}
	if len(input.ImageData) > 0 {
		mime := input.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]string{
				"mime_type": mime,
				"data":      base64.StdEncoding.EncodeToString(input.ImageData),
			},
		})
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     merged.Temperature,
			"maxOutputTokens": merged.MaxCompletionTokens,
		},
	}
	if strings.TrimSpace(merged.SystemPrompt) != "" {
		body["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": merged.SystemPrompt}},
		}
	}
	if merged.EnableWebSearch {
		body["tools"] = []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		}
	}

	return c.send(ctx, merged.Model, body)
}

func (c *client) send(ctx context.Context, model string, payload map[string]interface{}) (*core.Response, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, normalizeModel(model), c.apiKey)
	bodyBytes, _ := json.Marshal(payload)

	_, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	var result generateContentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	text := result.firstText()
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}
	return &core.Response{
		Text:      text,
		Grounding: result.grounding(),
	}, nil
}

func (c *client) merge(opts core.Options) core.Options {
	out := c.defaults
	if strings.TrimSpace(opts.Model) != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens != 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	if strings.TrimSpace(opts.SystemPrompt) != "" {
		out.SystemPrompt = opts.SystemPrompt
	}
	if opts.EnableWebSearch {
		out.EnableWebSearch = true
	}
	return out
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return "models/" + defaultModelName
	}
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
				RetrievedContext *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"retrievedContext"`
			} `json:"groundingChunks"`
			WebSearchQueries []string `json:"webSearchQueries"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (r generateContentResponse) firstText() string {
	for _, candidate := range r.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func (r generateContentResponse) grounding() *core.Grounding {
	for _, candidate := range r.Candidates {
		meta := candidate.GroundingMetadata
		if meta == nil {
			continue
		}
		g := &core.Grounding{SearchQueries: meta.WebSearchQueries}
		for _, chunk := range meta.GroundingChunks {
			src := core.GroundingSource{}
			if chunk.Web != nil {
				src.URI = chunk.Web.URI
				src.Title = chunk.Web.Title
			}
			if chunk.RetrievedContext != nil {
				src.RetrievedContextURI = chunk.RetrievedContext.URI
				if src.Title == "" {
					src.Title = chunk.RetrievedContext.Title
				}
			}
			if src.URI != "" || src.RetrievedContextURI != "" {
				g.Sources = append(g.Sources, src)
			}
		}
		return g
	}
	return nil
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
