// Command model-smoketest exercises a configured model provider end to end:
// one grounded investigation exchange, printed raw. Useful when rotating
// keys or trialing a new model name before deploying the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	aicore "github.com/signalworks/claimcheck/src/ai/core"
	_ "github.com/signalworks/claimcheck/src/ai/providers"
)

var (
	providerFlag = flag.String("provider", "gemini", "Provider to exercise")
	modelFlag    = flag.String("model", "", "Override model name")
	claimFlag    = flag.String("claim", "The Eiffel Tower is located in Paris, France.", "Claim to investigate")
	timeoutFlag  = flag.Duration("timeout", 60*time.Second, "Exchange timeout")
	webFlag      = flag.Bool("web", true, "Enable search grounding")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	client, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:  *providerFlag,
		Model:     *modelFlag,
		GeminiKey: os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		log.Fatalf("client init: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	resp, err := client.Respond(ctx, aicore.Input{
		Prompt: fmt.Sprintf("Assess this claim and answer with JSON {\"verdict\":..., \"analysis\":...}: %s", *claimFlag),
	}, aicore.Options{EnableWebSearch: *webFlag})
	if err != nil {
		log.Fatalf("[%s] exchange failed: %v", *providerFlag, err)
	}

	fmt.Printf("=== %s (%.1fs) ===\n", *providerFlag, time.Since(start).Seconds())
	fmt.Println(resp.Text)
	if resp.Grounding != nil {
		fmt.Printf("--- grounding: %d source(s), %d quer(ies)\n",
			len(resp.Grounding.Sources), len(resp.Grounding.SearchQueries))
		for _, src := range resp.Grounding.Sources {
			fmt.Printf("    %s  %s\n", src.Title, src.URI)
		}
	}
}
