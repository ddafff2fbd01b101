// Package entropy provides seeds for the deterministic random generators used
// by world generation and unit spawning.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a non-zero seed drawn from crypto/rand. Zero is reserved as
// "pick a seed for me" throughout the configuration, so it is never returned.
func NewSeed() (int64, error) {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		// Drop the sign bit so seeds print cleanly in logs.
		seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
		if seed != 0 {
			return seed, nil
		}
	}
}

// Resolve returns seed unchanged unless it is zero, in which case a fresh
// seed is drawn.
func Resolve(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}
