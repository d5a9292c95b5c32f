// Package testkit provides seeded frame fixtures shared by package tests.
package testkit

import (
	"math/rand"
	"time"

	"causalimpact/domain/dataset"
)

// DefaultColumns are the labels of generated frames: the response and two covariates
var DefaultColumns = []string{"y", "x1", "x2"}

// IndexStart is the first timestamp of date indexed fixtures
var IndexStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

// RandFrame returns rows uniform draws in [0, 1) for each of cols columns
func RandFrame(rows, cols int, seed int64) *dataset.Frame {
	rng := rand.New(rand.NewSource(seed))
	values := make([][]float64, cols)
	for c := range values {
		values[c] = make([]float64, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			values[c][r] = rng.Float64()
		}
	}
	return mustFrame(columnNames(cols), values)
}

// DateFrame returns RandFrame indexed by consecutive days from IndexStart
func DateFrame(rows, cols int, seed int64) *dataset.Frame {
	f := RandFrame(rows, cols, seed)
	if _, err := f.WithTimes(DailyIndex(rows)); err != nil {
		panic(err)
	}
	return f
}

// DailyIndex returns n consecutive days starting at IndexStart
func DailyIndex(n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = IndexStart.AddDate(0, 0, i)
	}
	return times
}

// ImpactFrame returns y = 10 + 2*x1 + noise with a random walk level, and adds
// lift to y from row intervention onwards.
func ImpactFrame(rows, intervention int, lift float64, seed int64) *dataset.Frame {
	rng := rand.New(rand.NewSource(seed))
	y := make([]float64, rows)
	x := make([]float64, rows)
	level := 10.0
	for r := 0; r < rows; r++ {
		x[r] = 5 + rng.NormFloat64()
		y[r] = level + 2*x[r] + 0.3*rng.NormFloat64()
		if r >= intervention {
			y[r] += lift
		}
		level += 0.05 * rng.NormFloat64()
	}
	return mustFrame([]string{"y", "x1"}, [][]float64{y, x})
}

func columnNames(cols int) []string {
	if cols <= len(DefaultColumns) {
		return append([]string(nil), DefaultColumns[:cols]...)
	}
	return dataset.PositionalColumns(cols)
}

func mustFrame(columns []string, values [][]float64) *dataset.Frame {
	f, err := dataset.NewFrame(columns, values)
	if err != nil {
		panic(err)
	}
	return f
}
