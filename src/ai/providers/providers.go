// Package providers registers every available model provider with the core
// factory. Import for side effects.
package providers

import (
	_ "github.com/signalworks/claimcheck/src/ai/gemini"
)
