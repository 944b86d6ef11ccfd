package webserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalworks/claimcheck/src/ai/core"
	"github.com/signalworks/claimcheck/src/cache"
	"github.com/signalworks/claimcheck/src/investigator/config"
	"github.com/signalworks/claimcheck/src/investigator/engine"
	"github.com/signalworks/claimcheck/src/quota"
	"github.com/signalworks/claimcheck/src/ratelimit"
	"github.com/signalworks/claimcheck/src/verify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeModel struct {
	calls int
}

func (m *fakeModel) Respond(context.Context, core.Input, core.Options) (*core.Response, error) {
	m.calls++
	return &core.Response{
		Text: `{"verdict":"REAL","headline":"Confirmed","analysis":"Widely reported.","keyFactors":["coverage"]}`,
	}, nil
}

type erroringModel struct {
	err error
}

func (m *erroringModel) Respond(context.Context, core.Input, core.Options) (*core.Response, error) {
	return nil, m.err
}

func testRouter(t *testing.T, cfg config.Config) (*gin.Engine, *fakeModel) {
	t.Helper()
	model := &fakeModel{}
	return routerWithModel(t, cfg, model), model
}

func routerWithModel(t *testing.T, cfg config.Config, model core.Client) *gin.Engine {
	t.Helper()

	fetcher := verify.NewFetcher()
	batch := verify.NewBatch(verify.NewVerifier(fetcher, verify.NewArchiveResolver("http://127.0.0.1:1", fetcher)), 2)
	eng := engine.New(model, batch, cache.New(cache.NewMemoryStore(), time.Minute), nil)

	return New(cfg, Deps{
		Engine:  eng,
		Limiter: ratelimit.New(ratelimit.NewMemoryStore(), cfg.PerMinuteCeiling),
		Tracker: quota.New(quota.NewMemoryStore(), cfg.DailyCeiling),
	})
}

func defaultConfig() config.Config {
	return config.Config{
		PerMinuteCeiling: 5,
		DailyCeiling:     200,
	}
}

func postInvestigate(r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/investigate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := testRouter(t, defaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestInvestigate_HappyPath(t *testing.T) {
	r, model := testRouter(t, defaultConfig())

	w := postInvestigate(r, `{"text":"the tower is in Paris"}`, map[string]string{"X-Session-Id": "sess-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, model.calls)

	var resp struct {
		Result struct {
			Verdict    string `json:"verdict"`
			Confidence int    `json:"confidence"`
			Headline   string `json:"headline"`
		} `json:"result"`
		QuotaRemaining int  `json:"quotaRemaining"`
		Cached         bool `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REAL", resp.Result.Verdict)
	assert.Equal(t, "Confirmed", resp.Result.Headline)
	assert.GreaterOrEqual(t, resp.Result.Confidence, 60)
	assert.LessOrEqual(t, resp.Result.Confidence, 95)
	assert.Equal(t, 199, resp.QuotaRemaining)
	assert.False(t, resp.Cached)
}

func TestInvestigate_CachedSecondCall(t *testing.T) {
	r, model := testRouter(t, defaultConfig())

	w := postInvestigate(r, `{"text":"same claim"}`, map[string]string{"X-Session-Id": "s"})
	require.Equal(t, http.StatusOK, w.Code)

	w = postInvestigate(r, `{"text":"same claim"}`, map[string]string{"X-Session-Id": "s"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, model.calls)

	var resp struct {
		Cached         bool `json:"cached"`
		QuotaRemaining int  `json:"quotaRemaining"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	// Quota is spent even on a cache hit, and the response reflects it.
	assert.Equal(t, 198, resp.QuotaRemaining)
}

func TestInvestigate_InvalidInput(t *testing.T) {
	// Validation runs after admission, so give the session enough headroom
	// that every case below reaches the handler.
	cfg := defaultConfig()
	cfg.PerMinuteCeiling = 100
	r, model := testRouter(t, cfg)
	hdr := map[string]string{"X-Session-Id": "s"}

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"not json", `this is not json`},
		{"blank text only", `{"text":"   "}`},
		{"oversized text", fmt.Sprintf(`{"text":%q}`, strings.Repeat("a", 5001))},
		{"non-http url", `{"url":"ftp://example.com/x"}`},
		{"image not a data uri", `{"image":"aGVsbG8="}`},
		{"image wrong mime", `{"image":"data:text/plain;base64,aGVsbG8="}`},
		{"image bad base64", `{"image":"data:image/png;base64,%%%"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postInvestigate(r, tt.body, hdr)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid_input")
		})
	}
	assert.Equal(t, 0, model.calls)
}

func TestInvestigate_ImageAccepted(t *testing.T) {
	r, model := testRouter(t, defaultConfig())

	png := base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3})
	body := fmt.Sprintf(`{"text":"what does this show","image":"data:image/png;base64,%s"}`, png)
	w := postInvestigate(r, body, map[string]string{"X-Session-Id": "s"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, model.calls)
}

func TestInvestigate_UpstreamFailureIs500(t *testing.T) {
	// Every upstream model failure is the service's fault from the client's
	// perspective: always 500, with the reason string carrying the detail.
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", errors.New("gemini API error: context deadline exceeded"), "upstream_timeout"},
		{"rate limited", errors.New("gemini API error: status 429"), "upstream_rate_limited"},
		{"hard failure", errors.New("gemini API error: status 500"), "upstream_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := routerWithModel(t, defaultConfig(), &erroringModel{err: tt.err})
			w := postInvestigate(r, `{"text":"claim"}`, map[string]string{"X-Session-Id": "s"})
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var body struct {
				Err string `json:"err"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Err)
		})
	}
}

func TestIdentity_EnforcedWithoutSession(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnforceIdentity = true
	r, model := testRouter(t, cfg)

	w := postInvestigate(r, `{"text":"claim"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "identity_required")
	assert.Equal(t, 0, model.calls)
}

func TestIdentity_SessionFromBody(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnforceIdentity = true
	r, _ := testRouter(t, cfg)

	w := postInvestigate(r, `{"text":"claim","sessionId":"body-session"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestIdentity_SessionFromJWT(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnforceIdentity = true
	cfg.JWTSecret = "test-secret"
	r, _ := testRouter(t, cfg)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "jwt-session"})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	w := postInvestigate(r, `{"text":"claim"}`, map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A token signed with the wrong key does not identify anyone.
	wrong := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "jwt-session"})
	badSigned, err := wrong.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	w = postInvestigate(r, `{"text":"claim"}`, map[string]string{"Authorization": "Bearer " + badSigned})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit_BurstDenied(t *testing.T) {
	cfg := defaultConfig()
	cfg.PerMinuteCeiling = 5
	r, _ := testRouter(t, cfg)
	hdr := map[string]string{"X-Session-Id": "burst"}

	// Eight rapid identical requests: five admitted, three rejected with a
	// positive retry hint.
	var ok, limited int
	for i := 0; i < 8; i++ {
		w := postInvestigate(r, `{"text":"burst claim"}`, hdr)
		switch w.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
			var body struct {
				Err        string `json:"err"`
				RetryAfter int    `json:"retry_after"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "rate_limited", body.Err)
			assert.Greater(t, body.RetryAfter, 0)
			assert.LessOrEqual(t, body.RetryAfter, 60)
		default:
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 3, limited)

	// A different session is unaffected.
	w := postInvestigate(r, `{"text":"burst claim"}`, map[string]string{"X-Session-Id": "other"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuota_ExceededAfterCeiling(t *testing.T) {
	cfg := defaultConfig()
	cfg.DailyCeiling = 2
	r, _ := testRouter(t, cfg)
	hdr := map[string]string{"X-Session-Id": "q"}

	for i := 0; i < 2; i++ {
		w := postInvestigate(r, fmt.Sprintf(`{"text":"claim %d"}`, i), hdr)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := postInvestigate(r, `{"text":"claim 3"}`, hdr)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "quota_exceeded")
}

func TestCeilingOverride_OnlyWhenEnabled(t *testing.T) {
	hdr := map[string]string{"X-Session-Id": "o", "X-RateLimit-Ceiling": "1"}

	cfg := defaultConfig()
	cfg.AllowCeilingOverride = true
	r, _ := testRouter(t, cfg)

	w := postInvestigate(r, `{"text":"a"}`, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	w = postInvestigate(r, `{"text":"b"}`, hdr)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Override off: the header is ignored and the default ceiling applies.
	r, _ = testRouter(t, defaultConfig())
	for i := 0; i < 3; i++ {
		w = postInvestigate(r, fmt.Sprintf(`{"text":"c%d"}`, i), hdr)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHistory_EmptyWithoutPersistence(t *testing.T) {
	r, _ := testRouter(t, defaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"investigations":[]}`, w.Body.String())
}
