package webserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signalworks/claimcheck/src/investigator/engine"
	"github.com/signalworks/claimcheck/src/investigator/types"
	"github.com/signalworks/claimcheck/src/logging"
)

const (
	maxTextChars  = 5000
	maxURLChars   = 2000
	maxImageBytes = 4 << 20

	// requestBudget bounds the whole investigation, model call and source
	// verification fan-out included.
	requestBudget = 120 * time.Second
)

type Investigate struct {
	engine *engine.Engine
}

func NewInvestigate(eng *engine.Engine) Investigate {
	return Investigate{engine: eng}
}

func (h Investigate) Investigate(c *gin.Context) {
	var req types.InvestigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid_input", "detail": "body must be JSON"})
		return
	}

	in, err := validate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid_input", "detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestBudget)
	defer cancel()

	resp, err := h.engine.Investigate(ctx, in, c.GetString(sessionKeyContext))
	if err != nil {
		log.Printf("investigate: %v", err)
		switch {
		case logging.IsTimeout(err):
			c.JSON(http.StatusInternalServerError, gin.H{"err": "upstream_timeout"})
		case logging.IsRateLimit(err):
			c.JSON(http.StatusInternalServerError, gin.H{"err": "upstream_rate_limited"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"err": "upstream_unavailable"})
		}
		return
	}

	resp.QuotaRemaining = c.GetInt(quotaRemainingContext)
	c.JSON(http.StatusOK, resp)
}

func validate(req types.InvestigateRequest) (engine.Input, error) {
	text := strings.TrimSpace(req.Text)
	rawURL := strings.TrimSpace(req.URL)

	if text == "" && rawURL == "" && req.Image == "" {
		return engine.Input{}, fmt.Errorf("one of text, url or image is required")
	}
	if len(text) > maxTextChars {
		return engine.Input{}, fmt.Errorf("text exceeds %d characters", maxTextChars)
	}
	if len(rawURL) > maxURLChars {
		return engine.Input{}, fmt.Errorf("url exceeds %d characters", maxURLChars)
	}
	if rawURL != "" && !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return engine.Input{}, fmt.Errorf("url must be http(s)")
	}

	in := engine.Input{Text: text, URL: rawURL}
	if req.Image != "" {
		mime, payload, err := parseDataURI(req.Image)
		if err != nil {
			return engine.Input{}, err
		}
		if len(payload) > maxImageBytes {
			return engine.Input{}, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
		}
		in.Image = payload
		in.ImageMIME = mime
	}
	return in, nil
}

// parseDataURI decodes a data:<mime>;base64,<payload> URI.
func parseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("image must be a data URI")
	}
	meta, encoded, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("image must be base64-encoded")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, fmt.Errorf("unsupported image type %q", mime)
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("image payload is not valid base64")
	}
	return mime, payload, nil
}
