package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hasher(t *testing.T) {
	h := New()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.Hash(nil))
	assert.Equal(t, h.Hash([]byte("hello")), h.Hash([]byte("hello")))
	assert.NotEqual(t, h.Hash([]byte("hello")), h.Hash([]byte("hello!")))
}

func TestFingerprint(t *testing.T) {
	full := New().Hash([]byte("conversation"))
	short := NewFingerprint().Hash([]byte("conversation"))

	assert.Len(t, short, FingerprintLength)
	assert.Equal(t, full[:FingerprintLength], short)
}
