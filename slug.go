package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// slugAlphabet is the base-36 alphabet slugs are drawn from: digits plus
// lowercase letters, URL-safe without escaping.
const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newSlug returns a random identifier of exactly length base-36 characters.
// It reads ceil(length*5/8) bytes from crypto/rand (base 36 carries about 5.17
// bits per character, so 5/8 byte per character rounded up never
// under-provisions entropy) and renders them as a base-36 integer, padded to
// length. Each call is independent; outputs are not predictable from prior
// ones.
func newSlug(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("slug length must be positive, got %d", length)
	}
	buf := make([]byte, (length*5+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}
	s := new(big.Int).SetBytes(buf).Text(36)
	for len(s) < length {
		s = "0" + s
	}
	return s[:length], nil
}
