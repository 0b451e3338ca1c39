package pipeline

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed generates a random non-negative seed for generation.
// Uses crypto/rand so concurrent requests never share a seed by accident.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to a fixed seed rather than panic; crypto/rand
		// failing at all is close to hypothetical.
		return 42
	}

	seed := int64(binary.LittleEndian.Uint64(buf[:]))
	if seed < 0 {
		seed = -seed
	}
	// -MinInt64 negates to itself; map it to zero.
	if seed < 0 {
		seed = 0
	}
	return seed
}
