package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// Hasher provides deterministic content hashing
type Hasher struct{}

// New creates a new Hasher
func New() *Hasher {
	return &Hasher{}
}

// HashStruct generates a deterministic SHA-256 hash of a struct. It relies
// on JSON marshaling, which sorts map keys. Pass a value that only carries
// the fields the hash should depend on.
func (h *Hasher) HashStruct(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal struct for hashing: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// HashString is a helper for simple string hashing (like cache keys)
func (h *Hasher) HashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// HashBytes is a helper for byte slices (like response bodies)
func (h *Hasher) HashBytes(b []byte) string {
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}
