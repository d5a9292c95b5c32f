package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(t *testing.T, name string, chunk int, seed int64) []float64 {
	t.Helper()
	r, err := NewSeededAdapter().Stream(context.Background(), name, chunk, seed)
	require.NoError(t, err)
	out := make([]float64, 5)
	for i := range out {
		out[i] = r.NormFloat64()
	}
	return out
}

func TestStreamIsDeterministic(t *testing.T) {
	assert.Equal(t, draw(t, "posterior", 3, 42), draw(t, "posterior", 3, 42))
}

func TestStreamsDifferByChunkNameAndSeed(t *testing.T) {
	base := draw(t, "posterior", 0, 42)
	assert.NotEqual(t, base, draw(t, "posterior", 1, 42))
	assert.NotEqual(t, base, draw(t, "other", 0, 42))
	assert.NotEqual(t, base, draw(t, "posterior", 0, 43))
}

func TestSeededStreamHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeededAdapter().SeededStream(ctx, "posterior", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
