// Package standardize computes z-score parameters on pre-period data and
// applies them, unchanged, to any other slice of the same table.
package standardize

import (
	"fmt"

	"causalimpact/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Params holds the per-column mean and sample standard deviation.
// A column with zero spread is centered only; its recorded Std is 1.
type Params struct {
	Mean []float64
	Std  []float64
	// Constant marks the columns whose observed std was zero
	Constant []bool
}

// Fit computes standardization parameters for every column of f
func Fit(f *dataset.Frame) (*Params, error) {
	if f.Rows() == 0 {
		return nil, fmt.Errorf("cannot standardize an empty frame")
	}

	n := f.NumColumns()
	p := &Params{
		Mean:     make([]float64, n),
		Std:      make([]float64, n),
		Constant: make([]bool, n),
	}
	for c := 0; c < n; c++ {
		col := f.Values[c]
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Columns[c], err)
		}
		std := 0.0
		if len(col) > 1 {
			if std, err = stats.StandardDeviationSample(col); err != nil {
				return nil, fmt.Errorf("column %s: %w", f.Columns[c], err)
			}
		}
		p.Mean[c] = mean
		if std == 0 {
			p.Std[c] = 1
			p.Constant[c] = true
		} else {
			p.Std[c] = std
		}
	}
	return p, nil
}

// Standardize fits parameters on f and returns the normalized copy
func Standardize(f *dataset.Frame) (*dataset.Frame, *Params, error) {
	p, err := Fit(f)
	if err != nil {
		return nil, nil, err
	}
	normed, err := p.Apply(f)
	if err != nil {
		return nil, nil, err
	}
	return normed, p, nil
}

// Apply returns (f - mean) / std as a new frame
func (p *Params) Apply(f *dataset.Frame) (*dataset.Frame, error) {
	if err := p.check(f); err != nil {
		return nil, err
	}
	out := f.Clone()
	for c, col := range out.Values {
		for i := range col {
			col[i] = (col[i] - p.Mean[c]) / p.Std[c]
		}
	}
	return out, nil
}

// Inverse returns normalized * std + mean as a new frame
func (p *Params) Inverse(f *dataset.Frame) (*dataset.Frame, error) {
	if err := p.check(f); err != nil {
		return nil, err
	}
	out := f.Clone()
	for c, col := range out.Values {
		for i := range col {
			col[i] = col[i]*p.Std[c] + p.Mean[c]
		}
	}
	return out, nil
}

// InverseResponse maps response values back to original units into a new slice
func (p *Params) InverseResponse(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*p.Std[0] + p.Mean[0]
	}
	return out
}

func (p *Params) check(f *dataset.Frame) error {
	if f.NumColumns() != len(p.Mean) {
		return fmt.Errorf("frame has %d columns, parameters cover %d", f.NumColumns(), len(p.Mean))
	}
	return nil
}
