package standardize

import (
	"math"
	"math/rand"
	"testing"

	"causalimpact/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFrame(t *testing.T, rows, cols int, seed int64) *dataset.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	values := make([][]float64, cols)
	for c := range values {
		values[c] = make([]float64, rows)
		for r := range values[c] {
			values[c][r] = rng.NormFloat64()*float64(c+1) + float64(10*c)
		}
	}
	f, err := dataset.NewFrame([]string{"y", "x1", "x2"}[:cols], values)
	require.NoError(t, err)
	return f
}

func TestStandardizeProducesZeroMeanUnitStd(t *testing.T) {
	f := randomFrame(t, 100, 3, 1)
	normed, p, err := Standardize(f)
	require.NoError(t, err)

	refit, err := Fit(normed)
	require.NoError(t, err)
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 0, refit.Mean[c], 1e-12)
		assert.InDelta(t, 1, refit.Std[c], 1e-12)
		assert.False(t, p.Constant[c])
	}
}

func TestStandardizeRoundTrip(t *testing.T) {
	f := randomFrame(t, 50, 3, 2)
	normed, p, err := Standardize(f)
	require.NoError(t, err)

	back, err := p.Inverse(normed)
	require.NoError(t, err)
	for c := range f.Values {
		assert.InDeltaSlice(t, f.Values[c], back.Values[c], 1e-9)
	}
	assert.InDeltaSlice(t, f.Values[0], p.InverseResponse(normed.Values[0]), 1e-9)
}

func TestApplyUsesFittedParameters(t *testing.T) {
	f := randomFrame(t, 200, 2, 3)
	pre := f.Slice(0, 100)
	post := f.Slice(100, 200)

	_, p, err := Standardize(pre)
	require.NoError(t, err)
	normedPost, err := p.Apply(post)
	require.NoError(t, err)

	for c := range post.Values {
		for i, v := range post.Values[c] {
			assert.Equal(t, (v-p.Mean[c])/p.Std[c], normedPost.Values[c][i])
		}
	}
	assert.Equal(t, 100, normedPost.Offset, "normalized slice keeps its index")
}

func TestStandardizeDoesNotMutateInput(t *testing.T) {
	f := randomFrame(t, 20, 2, 4)
	before := f.Column(0)
	_, _, err := Standardize(f)
	require.NoError(t, err)
	assert.Equal(t, before, f.Column(0))
}

func TestConstantColumnIsCenteredOnly(t *testing.T) {
	f, err := dataset.NewFrame([]string{"y", "x1"}, [][]float64{{1, 2, 3, 4}, {5, 5, 5, 5}})
	require.NoError(t, err)

	normed, p, err := Standardize(f)
	require.NoError(t, err)
	assert.True(t, p.Constant[1])
	assert.Equal(t, 1.0, p.Std[1])
	assert.Equal(t, []float64{0, 0, 0, 0}, normed.Values[1])

	back, err := p.Inverse(normed)
	require.NoError(t, err)
	assert.Equal(t, f.Values[1], back.Values[1])
	for _, v := range normed.Values[1] {
		assert.False(t, math.IsNaN(v))
	}
}

func TestParamsRejectMismatchedFrame(t *testing.T) {
	_, p, err := Standardize(randomFrame(t, 10, 2, 5))
	require.NoError(t, err)

	_, err = p.Apply(randomFrame(t, 10, 3, 6))
	assert.Error(t, err)
	_, err = p.Inverse(randomFrame(t, 10, 1, 7))
	assert.Error(t, err)

	_, err = Fit(&dataset.Frame{})
	assert.Error(t, err)
}
