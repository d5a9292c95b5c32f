package period

import (
	"testing"
	"time"

	"causalimpact/domain/core"
	"causalimpact/domain/dataset"
	"causalimpact/domain/impact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionalFrame(t *testing.T, rows int) *dataset.Frame {
	t.Helper()
	values := [][]float64{make([]float64, rows)}
	for i := range values[0] {
		values[0][i] = float64(i)
	}
	f, err := dataset.NewFrame([]string{"y"}, values)
	require.NoError(t, err)
	return f
}

func dateFrame(t *testing.T, rows int) *dataset.Frame {
	t.Helper()
	f := positionalFrame(t, rows)
	times := make([]time.Time, rows)
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
	}
	_, err := f.WithTimes(times)
	require.NoError(t, err)
	return f
}

func TestValidateIntegerPeriods(t *testing.T) {
	f := positionalFrame(t, 200)

	pre, post, err := Validate([]int{0, 100}, []int{100, 200}, f)
	require.NoError(t, err)
	assert.Equal(t, impact.Period{Start: 0, End: 100}, pre)
	assert.Equal(t, impact.Period{Start: 100, End: 200}, post)
	assert.Equal(t, []interface{}{0, 100}, Bounds(pre))

	pre, _, err = Validate([2]int{0, 3}, []interface{}{int64(3), uint8(10)}, f)
	require.NoError(t, err)
	assert.Equal(t, 3, pre.Len())
}

func TestValidateLabelPeriods(t *testing.T) {
	f := dateFrame(t, 200)

	pre, post, err := Validate([]string{"20180101", "20180410"}, [2]string{"2018-04-11", "2018-07-19"}, f)
	require.NoError(t, err)
	assert.Equal(t, 0, pre.Start)
	assert.Equal(t, 100, pre.End, "label periods include their last label")
	assert.Equal(t, 100, post.Start)
	assert.Equal(t, 200, post.End)
	assert.Equal(t, []interface{}{"20180101", "20180410"}, Bounds(pre))
	assert.Equal(t, "pre=[20180101, 20180410] post=[2018-04-11, 2018-07-19]", String(pre, post))
}

func TestValidateErrors(t *testing.T) {
	positional := positionalFrame(t, 200)
	dated := dateFrame(t, 200)
	overlap := "Values in training data cannot be present in the post-intervention data. " +
		"Please fix your pre_period value to cover at most one point less from when the intervention happened."

	tests := []struct {
		name     string
		frame    *dataset.Frame
		pre      interface{}
		post     interface{}
		message  string
		sentinel error
	}{
		{"overlap ints", positional, []int{5, 10}, []int{4, 7}, overlap, core.ErrPeriodSemantic},
		{"overlap labels", dated, []string{"20180101", "20180201"}, []string{"20180110", "20180210"}, overlap, core.ErrPeriodSemantic},
		{"post order ints", positional, []int{5, 10}, []int{15, 11}, "post_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"post order labels", dated, []string{"20180101", "20180110"}, []string{"20180115", "20180111"}, "post_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"pre span ints", positional, []int{0, 2}, []int{15, 11}, "pre_period must span at least 3 time points.", core.ErrPeriodSemantic},
		{"pre span labels", dated, []string{"20180101", "20180102"}, []string{"20180115", "20180111"}, "pre_period must span at least 3 time points.", core.ErrPeriodSemantic},
		{"pre order ints", positional, []int{5, 0}, []int{15, 11}, "pre_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"post same label", dated, []string{"20180101", "20180110"}, []string{"20180115", "20180115"}, "post_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"pre same label", dated, []string{"20180105", "20180105"}, []string{"20180115", "20180120"}, "pre_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"post same int", positional, []int{5, 10}, []int{15, 15}, "post_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"pre order labels", dated, []string{"20180105", "20180101"}, []string{"20180115", "20180111"}, "pre_period last number must be bigger than its first.", core.ErrPeriodSemantic},
		{"scalar", positional, 0, []int{15, 11}, "Input period must be of type list.", core.ErrTypeMismatch},
		{"string", dated, "20180101", []string{"20180115", "20180130"}, "Input period must be of type list.", core.ErrTypeMismatch},
		{"three values", positional, []int{0, 10, 30}, []int{15, 11}, "Period must have two values regarding the beginning and end of the pre and post intervention data.", core.ErrPeriodSemantic},
		{"none value", positional, []interface{}{0, nil}, []int{15, 11}, "Input period cannot have `None` values.", core.ErrTypeMismatch},
		{"float value", positional, []interface{}{0, 5.5}, []int{15, 11}, "Input must contain either int or str.", core.ErrTypeMismatch},
		{"mixed values", dated, []interface{}{0, "20180110"}, []int{15, 20}, "Input must contain either int or str.", core.ErrTypeMismatch},
		{"labels without dates", positional, []string{"20180101", "20180110"}, []string{"20180111", "20180130"}, "If input period is string then input data must have index of type DatetimeIndex.", core.ErrTypeMismatch},
		{"missing post label", dated, []string{"20180101", "20180110"}, []string{"20180111", "20200130"}, "20200130 is not preset in data index.", core.ErrPeriodSemantic},
		{"missing pre label", dated, []string{"20170101", "20180110"}, []string{"20180111", "20180120"}, "20170101 is not preset in data index.", core.ErrPeriodSemantic},
		{"unparseable label", dated, []string{"soon", "20180110"}, []string{"20180111", "20180120"}, "soon is not preset in data index.", core.ErrPeriodSemantic},
		{"int out of range", positional, []int{0, 100}, []int{100, 201}, "201 is not preset in data index.", core.ErrPeriodSemantic},
		{"negative int", positional, []int{-1, 100}, []int{100, 200}, "-1 is not preset in data index.", core.ErrPeriodSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(tt.pre, tt.post, tt.frame)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseNilPeriod(t *testing.T) {
	_, err := Parse(nil, positionalFrame(t, 10))
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
}

func TestAdjacentPeriodsAreAllowed(t *testing.T) {
	f := positionalFrame(t, 20)
	_, _, err := Validate([]int{0, 10}, []int{10, 20}, f)
	assert.NoError(t, err)

	_, _, err = Validate([]int{0, 11}, []int{10, 20}, f)
	assert.Error(t, err)
}
