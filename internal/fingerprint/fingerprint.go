// Package fingerprint derives the content digest used for duplicate page
// detection. It is deterministic, not a security primitive.
package fingerprint

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Compute returns the hex-encoded BLAKE2b-256 digest of the normalized page
// text. Empty text is valid input and yields the digest of the empty string.
func Compute(text string) string {
	sum := blake2b.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Normalize collapses runs of whitespace to a single space and trims the
// ends, so layout-only differences in extracted text do not change the digest.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
