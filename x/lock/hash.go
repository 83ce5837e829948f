package lock

import (
	"golang.org/x/crypto/sha3"
)

const (
	// HashSize is the size of a hash lock.
	HashSize = 32
	// PreimageSize is the size of the secret revealed to release funds.
	PreimageSize = 32
)

// Keccak256 returns the legacy Keccak-256 digest of all given chunks
// concatenated. This is the hash used by the counterparty venues, not the
// standardized SHA3-256.
func Keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		// Write on a hash never returns an error.
		_, _ = h.Write(c)
	}
	return h.Sum(nil)
}
