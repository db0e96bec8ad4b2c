package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps how much of a source text is hashed (1MB).
// Larger inputs are truncated before hashing to bound CPU cost.
const MaxHashSize = 1024 * 1024

// HashContent computes the SHA-256 hash of source content.
// Returns a hex-encoded hash string, or empty string for empty content.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}

	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// HashString computes the SHA-256 hash of a string.
func HashString(s string) string {
	return HashContent([]byte(s))
}
