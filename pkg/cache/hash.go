package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a "prefix:digest" cache key from the JSON encoding of
// parts. The full SHA-256 digest is kept; graph and layout keys are
// compared for equality only, so there is no reason to truncate.
func hashKey(prefix string, parts ...any) string {
	encoded, _ := json.Marshal(parts)
	sum := sha256.Sum256(encoded)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the SHA-256 digest of data as a 64-character hex string.
// It is the content hash used for sources, graphs, and layouts.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
