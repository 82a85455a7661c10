package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from the system CSPRNG.
// It is used for salts and nonces; a failing CSPRNG is unrecoverable,
// so the error panics rather than propagating.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing passwords and derived keys from memory after
// use. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
