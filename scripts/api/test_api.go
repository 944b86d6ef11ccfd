// Minimal end‑to‑end integration test for the ClaimCheck API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
)

var (
	baseURL = getenv("API_URL", "http://localhost:8080")
	session = "integration-" + uuid.NewString()
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	checkHealth()

	claim := "The Eiffel Tower is located in Paris, France."
	first := investigate(claim)
	if first.Result.Verdict == "" {
		log.Fatal("investigate: empty verdict")
	}
	if first.Result.Confidence < 60 || first.Result.Confidence > 95 {
		log.Fatalf("investigate: confidence %d out of range", first.Result.Confidence)
	}
	if first.Cached {
		log.Fatal("investigate: first call must not be cached")
	}

	second := investigate(claim)
	if !second.Cached {
		log.Fatal("investigate: repeat call should hit the cache")
	}
	if second.QuotaRemaining >= first.QuotaRemaining {
		log.Fatal("investigate: quota should decrease across calls")
	}

	checkValidation()
	checkHistory()

	fmt.Println("✓ all endpoints passed")
}

type investigateResponse struct {
	Result struct {
		Verdict    string `json:"verdict"`
		Confidence int    `json:"confidence"`
		Sources    []struct {
			URL      string `json:"url"`
			Verified bool   `json:"verified"`
		} `json:"sources"`
	} `json:"result"`
	QuotaRemaining int  `json:"quotaRemaining"`
	Cached         bool `json:"cached"`
}

func checkHealth() {
	var resp struct{ Status string }
	doJSON("GET", "/healthz", nil, &resp, http.StatusOK)
	if resp.Status != "ok" {
		log.Fatalf("healthz: status %q", resp.Status)
	}
}

func investigate(text string) investigateResponse {
	var resp investigateResponse
	doJSON("POST", "/v1/investigate", map[string]any{
		"text":      text,
		"sessionId": session,
	}, &resp, http.StatusOK)
	return resp
}

func checkValidation() {
	doJSON("POST", "/v1/investigate", map[string]any{
		"sessionId": session,
	}, nil, http.StatusBadRequest)
}

func checkHistory() {
	var resp struct {
		Investigations []struct {
			Verdict string `json:"verdict"`
		} `json:"investigations"`
	}
	doJSON("GET", "/v1/history", nil, &resp, http.StatusOK)
}

// ----------------------------- helpers

func doJSON(method, path string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
