package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one chunk of a named operation,
	// so parallel simulation produces identical results for the same seed
	Stream(ctx context.Context, name string, chunk int, baseSeed int64) (*rand.Rand, error)
}
