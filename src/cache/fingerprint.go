package cache

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/OneOfOne/xxhash"
)

// imagePrefixBytes is how much of an image payload participates in the
// fingerprint; enough to tell images apart without hashing megabytes.
const imagePrefixBytes = 1024

// Fingerprint derives a deterministic 128-bit key from normalized request
// input by running two independently seeded 64-bit passes. Collisions across
// distinct inputs are accepted residual risk.
func Fingerprint(text, url string, image []byte) string {
	prefix := image
	if len(prefix) > imagePrefixBytes {
		prefix = prefix[:imagePrefixBytes]
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(text)))
	b.WriteByte(0)
	b.WriteString(strings.TrimSpace(url))
	b.WriteByte(0)
	b.Write(prefix)
	normalized := []byte(b.String())

	h1 := xxhash.NewS64(0)
	h1.Write(normalized)
	h2 := xxhash.NewS64(1)
	h2.Write(normalized)

	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:], h1.Sum64())
	binary.LittleEndian.PutUint64(out[8:], h2.Sum64())
	return hex.EncodeToString(out)
}
