package domain

// Hasher turns bytes into a stable printable digest.
type Hasher interface {
	Hash(data []byte) string
}
