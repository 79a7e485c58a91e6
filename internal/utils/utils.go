package utils

import (
	"math/rand/v2"
	"strings"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short lowercase base36 token, e.g. "k3x9qa".
func GenerateID(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return sb.String()
}

// CleanNickname trims surrounding whitespace. An empty result means the
// nickname is missing.
func CleanNickname(nickname string) string {
	return strings.TrimSpace(nickname)
}
