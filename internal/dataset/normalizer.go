// Package dataset coerces heterogeneous caller input into a validated numeric
// frame. The first column is the response; the rest are covariates.
package dataset

import (
	"math"
	"reflect"

	domainDataset "causalimpact/domain/dataset"
	"causalimpact/internal/errors"
)

// Validation messages
const (
	msgConversion    = "Could not transform input data to a data frame."
	msgNonNumeric    = "Input data must contain only numeric values."
	msgNonFinite     = "Input data must contain only finite values."
	msgResponseNull  = "Input response cannot have just Null values."
	msgResponseShort = "Input response must have more than 3 non-null points at least."
	msgResponseConst = "Input response cannot be constant."
	msgNaN           = "Input data cannot have NAN values."
)

// MinResponsePoints is the smallest number of non-missing response values accepted
const MinResponsePoints = 3

// Normalize converts raw into a frame and validates its content. Accepted
// inputs are *Frame, Frame, [][]float64 (rows), []float64, [][]interface{},
// []interface{}, []int, []complex128 and [][]complex128. The result never
// aliases caller memory.
func Normalize(raw interface{}) (*domainDataset.Frame, error) {
	if isNil(raw) {
		return nil, errors.EmptyInput("data")
	}

	frame, nonNumeric, err := toFrame(raw)
	if err != nil {
		return nil, err
	}
	if frame.Rows() == 0 || frame.NumColumns() == 0 {
		return nil, errors.EmptyInput("data")
	}
	if nonNumeric {
		return nil, errors.ConversionFailure(msgNonNumeric)
	}
	if err := validateValues(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func isNil(raw interface{}) bool {
	if raw == nil {
		return true
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// toFrame returns the converted frame and whether any cell was non-numeric
func toFrame(raw interface{}) (*domainDataset.Frame, bool, error) {
	switch v := raw.(type) {
	case *domainDataset.Frame:
		return copyFrame(v)
	case domainDataset.Frame:
		return copyFrame(&v)
	case [][]float64:
		frame, err := domainDataset.NewFrameFromRows(v)
		if err != nil {
			return nil, false, errors.ConversionFailure(msgConversion)
		}
		return frame, false, nil
	case []float64:
		return fromColumn(floatsToCells(v))
	case []int:
		cells := make([]interface{}, len(v))
		for i, x := range v {
			cells[i] = x
		}
		return fromColumn(cells)
	case []complex128:
		cells := make([]interface{}, len(v))
		for i, x := range v {
			cells[i] = x
		}
		return fromColumn(cells)
	case [][]complex128:
		return fromRows(len(v), func(r int) []interface{} {
			cells := make([]interface{}, len(v[r]))
			for i, x := range v[r] {
				cells[i] = x
			}
			return cells
		})
	case [][]interface{}:
		return fromRows(len(v), func(r int) []interface{} { return v[r] })
	case []interface{}:
		if len(v) > 0 && isRow(v[0]) {
			rows := make([][]interface{}, len(v))
			for r, item := range v {
				row, ok := rowCells(item)
				if !ok {
					return nil, false, errors.ConversionFailure(msgConversion)
				}
				rows[r] = row
			}
			return fromRows(len(rows), func(r int) []interface{} { return rows[r] })
		}
		return fromColumn(v)
	default:
		return nil, false, errors.ConversionFailure(msgConversion)
	}
}

func copyFrame(f *domainDataset.Frame) (*domainDataset.Frame, bool, error) {
	if len(f.Columns) != len(f.Values) {
		return nil, false, errors.ConversionFailure(msgConversion)
	}
	for _, col := range f.Values {
		if len(col) != f.Rows() {
			return nil, false, errors.ConversionFailure(msgConversion)
		}
	}
	if f.Times != nil && len(f.Times) != f.Rows() {
		return nil, false, errors.ConversionFailure(msgConversion)
	}
	return f.Clone(), false, nil
}

func floatsToCells(values []float64) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func isRow(item interface{}) bool {
	switch item.(type) {
	case []interface{}, []float64:
		return true
	}
	return false
}

func rowCells(item interface{}) ([]interface{}, bool) {
	switch row := item.(type) {
	case []interface{}:
		return row, true
	case []float64:
		return floatsToCells(row), true
	}
	return nil, false
}

func fromColumn(cells []interface{}) (*domainDataset.Frame, bool, error) {
	return fromRows(len(cells), func(r int) []interface{} { return []interface{}{cells[r]} })
}

func fromRows(n int, row func(int) []interface{}) (*domainDataset.Frame, bool, error) {
	if n == 0 {
		return &domainDataset.Frame{}, false, nil
	}
	width := len(row(0))
	values := make([][]float64, width)
	for c := range values {
		values[c] = make([]float64, n)
	}

	nonNumeric := false
	for r := 0; r < n; r++ {
		cells := row(r)
		if len(cells) != width {
			return nil, false, errors.ConversionFailure(msgConversion)
		}
		for c, cell := range cells {
			v, ok := toFloat(cell)
			if !ok {
				nonNumeric = true
			}
			values[c][r] = v
		}
	}

	frame, err := domainDataset.NewFrame(domainDataset.PositionalColumns(width), values)
	if err != nil {
		return nil, false, errors.ConversionFailure(msgConversion)
	}
	return frame, nonNumeric, nil
}

// toFloat converts a numeric cell; nil becomes NaN (missing)
func toFloat(cell interface{}) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return math.NaN(), false
	}
}

func validateValues(f *domainDataset.Frame) error {
	response := f.Values[0]
	var present []float64
	for _, v := range response {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	if len(present) == 0 {
		return errors.DegenerateResponse(msgResponseNull)
	}
	if len(present) < MinResponsePoints {
		return errors.DegenerateResponse(msgResponseShort)
	}
	if isConstant(present) {
		return errors.DegenerateResponse(msgResponseConst)
	}

	for _, col := range f.Values {
		for _, v := range col {
			if math.IsNaN(v) {
				return errors.ConversionFailure(msgNaN)
			}
			if math.IsInf(v, 0) {
				return errors.ConversionFailure(msgNonFinite)
			}
		}
	}
	return nil
}

// CheckTrainingResponse rejects a training window whose response never changes.
// A model fitted on it has no variance to estimate.
func CheckTrainingResponse(pre *domainDataset.Frame) error {
	if isConstant(pre.Response()) {
		return errors.DegenerateResponse(msgResponseConst)
	}
	return nil
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
