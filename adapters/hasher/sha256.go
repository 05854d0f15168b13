package hasher

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
)

// FingerprintLength is the number of hex characters kept by NewFingerprint.
const FingerprintLength = 16

// New returns a domain.Hasher backed by SHA-256 producing the full hex digest.
func New() domain.Hasher { return sha256Hasher{} }

// NewFingerprint returns a SHA-256 hasher truncated to FingerprintLength hex
// characters, short enough for log fields and routing keys.
func NewFingerprint() domain.Hasher { return sha256Hasher{size: FingerprintLength} }

type sha256Hasher struct {
	size int
}

func (h sha256Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if h.size > 0 && h.size < len(digest) {
		return digest[:h.size]
	}
	return digest
}
