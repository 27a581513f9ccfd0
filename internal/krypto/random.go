package krypto

import (
	"crypto/rand"
	"fmt"
)

// genRandomBytes reads n bytes from the system's secure random source.
func genRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}

	return b, nil
}

// RandomBytes returns n bytes from a secure random source.
func RandomBytes(n int) ([]byte, error) {
	return genRandomBytes(n)
}
