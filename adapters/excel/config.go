package excel

import (
	"causalimpact/adapters/datareadiness/coercer"
)

// DefaultSheet is read when no sheet is configured
const DefaultSheet = "Sheet1"

// ExcelConfig holds configuration for a spreadsheet data source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet"`
	// IndexColumn names the timestamp column used as datetime index; empty for positional rows
	IndexColumn    string                 `json:"index_column"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for spreadsheet processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:          DefaultSheet,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
