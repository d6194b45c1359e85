package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
)

// keyVersion is part of every generated key. Bump it when the layout of a
// cached plan changes so stale entries are never decoded.
const keyVersion = "v1"

// hashKey returns "<prefix>:<version>:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	h := NewHasher()
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + keyVersion + ":" + h.Sum()
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Hasher is an io.Writer that digests everything written to it, so large
// graphs can be hashed while they are encoded.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns an empty SHA-256 hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (h *Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

// Sum returns the hex digest of the bytes written so far.
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}
