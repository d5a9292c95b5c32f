package coercer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"1e3", 1000, true},
		{"(123)", -123, true},
		{"$1,200.50", 1200.5, true},
		{"1.234,56", 1234.56, true},
		{"1 234", 1234, true},
		{"12%", 12, true},
		{"€7", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := c.ParseNumeric(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	want := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, s := range []string{"20180102", "2018-01-02", "2018/01/02", "01/02/2018", "02-Jan-2018", "2018-01-02T00:00:00Z"} {
		got, ok := c.ParseTimestamp(s)
		assert.True(t, ok, s)
		assert.True(t, want.Equal(got), s)
	}

	_, ok := c.ParseTimestamp("tomorrow")
	assert.False(t, ok)
}

func TestCoerceValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, Cell{Kind: KindMissing}, c.CoerceValue(nil))
	assert.Equal(t, Cell{Kind: KindMissing}, c.CoerceValue("   "))
	assert.Equal(t, Cell{Kind: KindNumeric, Number: 1}, c.CoerceValue("1"))
	assert.Equal(t, Cell{Kind: KindNumeric, Number: 2.5}, c.CoerceValue(2.5))
	assert.Equal(t, Cell{Kind: KindBoolean, Bool: true}, c.CoerceValue("Yes"))
	assert.Equal(t, KindTimestamp, c.CoerceValue("2018-01-02").Kind)
	assert.Equal(t, Cell{Kind: KindString, Text: "north region"}, c.CoerceValue("  North   Region "))
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeTypeDistribution([]interface{}{"1", "2", "3.5", "", nil})
	assert.Equal(t, 5, numeric.TotalCount)
	assert.Equal(t, 3, numeric.ValidCount)
	assert.Equal(t, 1.0, numeric.NumericRatio)
	assert.Equal(t, KindNumeric, numeric.RecommendedType)

	mixed := c.AnalyzeTypeDistribution([]interface{}{"1", "a", "b", "c"})
	assert.Equal(t, KindString, mixed.RecommendedType)

	empty := c.AnalyzeTypeDistribution([]interface{}{"", nil})
	assert.Equal(t, KindMissing, empty.RecommendedType)
	assert.Zero(t, empty.NumericRatio)
}
