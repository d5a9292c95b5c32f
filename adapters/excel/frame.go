package excel

import (
	"fmt"
	"math"
	"time"

	"causalimpact/adapters/datareadiness/coercer"
	"causalimpact/domain/dataset"
)

// ToFrame converts the spreadsheet into a frame. The first non-index column is
// the response. Blank cells become NaN and are rejected later by the analysis.
// When indexColumn is set its cells must be timestamps and become the datetime index.
func (d *ExcelData) ToFrame(indexColumn string, cfg coercer.CoercionConfig) (*dataset.Frame, error) {
	c := coercer.NewTypeCoercer(cfg)

	columns := make([]string, 0, len(d.Headers))
	foundIndex := indexColumn == ""
	for _, h := range d.Headers {
		if h == indexColumn {
			foundIndex = true
			continue
		}
		columns = append(columns, h)
	}
	if !foundIndex {
		return nil, fmt.Errorf("index column %q not found in headers %v", indexColumn, d.Headers)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no value columns besides the index column")
	}

	values := make([][]float64, len(columns))
	for i := range values {
		values[i] = make([]float64, len(d.Rows))
	}
	var times []time.Time
	if indexColumn != "" {
		times = make([]time.Time, len(d.Rows))
	}

	for r, row := range d.Rows {
		if indexColumn != "" {
			ts, ok := c.ParseTimestamp(row[indexColumn])
			if !ok {
				return nil, fmt.Errorf("row %d: index value %q is not a timestamp", r+2, row[indexColumn])
			}
			times[r] = ts
		}
		for i, col := range columns {
			cell := c.CoerceValue(row[col])
			switch cell.Kind {
			case coercer.KindNumeric:
				values[i][r] = cell.Number
			case coercer.KindMissing:
				values[i][r] = math.NaN()
			default:
				analysis := c.AnalyzeTypeDistribution(d.columnCells(col))
				return nil, fmt.Errorf("row %d column %q: %q is not numeric (column reads as %s)",
					r+2, col, row[col], analysis.RecommendedType)
			}
		}
	}

	frame, err := dataset.NewFrame(columns, values)
	if err != nil {
		return nil, err
	}
	if times != nil {
		if _, err := frame.WithTimes(times); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (d *ExcelData) columnCells(col string) []interface{} {
	cells := make([]interface{}, len(d.Rows))
	for r, row := range d.Rows {
		cells[r] = row[col]
	}
	return cells
}

// LoadFrame reads cfg.FilePath and converts it with ToFrame
func LoadFrame(cfg ExcelConfig) (*dataset.Frame, error) {
	data, err := NewDataReader(cfg.FilePath).WithSheet(cfg.Sheet).ReadData()
	if err != nil {
		return nil, err
	}
	return data.ToFrame(cfg.IndexColumn, cfg.CoercionConfig)
}
