package rng

import (
	"context"
	"math/rand"
)

// SeededAdapter implements ports.RNGPort with math/rand sources derived from a base seed
type SeededAdapter struct{}

// NewSeededAdapter creates an RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream for one chunk of a named operation
func (r *SeededAdapter) Stream(ctx context.Context, name string, chunk int, baseSeed int64) (*rand.Rand, error) {
	// Large odd multiplier keeps neighbouring chunk seeds far apart
	return r.SeededStream(ctx, name, baseSeed+int64(chunk)*0x9E3779B1)
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
