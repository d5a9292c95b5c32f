package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Frame is an ordered numeric table. The first column is the response variable,
// the remaining columns are covariates. Values are stored column-major.
type Frame struct {
	Columns []string
	Values  [][]float64 // Values[column][row]

	// Offset is the positional label of row 0 when the frame has no datetime index
	Offset int
	// Times is the datetime index; nil for positional frames
	Times []time.Time
}

// NewFrame builds a positional frame from column-major values
func NewFrame(columns []string, values [][]float64) (*Frame, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("frame has %d column names but %d columns", len(columns), len(values))
	}
	for i := 1; i < len(values); i++ {
		if len(values[i]) != len(values[0]) {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", columns[i], len(values[i]), len(values[0]))
		}
	}
	return &Frame{Columns: columns, Values: values}, nil
}

// NewFrameFromRows builds a positional frame with positional column labels from row-major values
func NewFrameFromRows(rows [][]float64) (*Frame, error) {
	if len(rows) == 0 {
		return &Frame{}, nil
	}
	width := len(rows[0])
	values := make([][]float64, width)
	for c := range values {
		values[c] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r, len(row), width)
		}
		for c, v := range row {
			values[c][r] = v
		}
	}
	return NewFrame(PositionalColumns(width), values)
}

// PositionalColumns returns the labels "0".."n-1"
func PositionalColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

// WithTimes attaches a datetime index and returns the frame
func (f *Frame) WithTimes(times []time.Time) (*Frame, error) {
	if len(times) != f.Rows() {
		return nil, fmt.Errorf("index has %d entries but frame has %d rows", len(times), f.Rows())
	}
	f.Times = append([]time.Time(nil), times...)
	f.Offset = 0
	return f, nil
}

// Rows returns the number of observations
func (f *Frame) Rows() int {
	if f == nil || len(f.Values) == 0 {
		return 0
	}
	return len(f.Values[0])
}

// NumColumns returns the number of columns including the response
func (f *Frame) NumColumns() int {
	if f == nil {
		return 0
	}
	return len(f.Values)
}

// NumCovariates returns the number of covariate columns
func (f *Frame) NumCovariates() int {
	if f.NumColumns() == 0 {
		return 0
	}
	return f.NumColumns() - 1
}

// HasDatetimeIndex reports whether rows are labelled by timestamps
func (f *Frame) HasDatetimeIndex() bool {
	return f != nil && f.Times != nil
}

// Column returns a copy of column i
func (f *Frame) Column(i int) []float64 {
	return append([]float64(nil), f.Values[i]...)
}

// Response returns a copy of the response column
func (f *Frame) Response() []float64 {
	return f.Column(0)
}

// CovariateNames returns the covariate column labels, nil when there are none
func (f *Frame) CovariateNames() []string {
	if f.NumCovariates() == 0 {
		return nil
	}
	return append([]string(nil), f.Columns[1:]...)
}

// IndexOf returns the row position of timestamp t in the datetime index
func (f *Frame) IndexOf(t time.Time) (int, bool) {
	for i, ts := range f.Times {
		if ts.Equal(t) {
			return i, true
		}
	}
	return -1, false
}

// Label returns the index label of row as a string
func (f *Frame) Label(row int) string {
	if f.HasDatetimeIndex() {
		return f.Times[row].Format("2006-01-02T15:04:05Z07:00")
	}
	return strconv.Itoa(f.Offset + row)
}

// Slice returns a deep copy of rows [start, end), keeping their index labels
func (f *Frame) Slice(start, end int) *Frame {
	out := &Frame{
		Columns: append([]string(nil), f.Columns...),
		Values:  make([][]float64, len(f.Values)),
		Offset:  f.Offset + start,
	}
	for c, col := range f.Values {
		out.Values[c] = append([]float64(nil), col[start:end]...)
	}
	if f.Times != nil {
		out.Times = append([]time.Time(nil), f.Times[start:end]...)
		out.Offset = 0
	}
	return out
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := f.Slice(0, f.Rows())
	out.Offset = f.Offset
	return out
}

// Row returns a copy of the values of row r across all columns
func (f *Frame) Row(r int) []float64 {
	row := make([]float64, len(f.Values))
	for c, col := range f.Values {
		row[c] = col[r]
	}
	return row
}
