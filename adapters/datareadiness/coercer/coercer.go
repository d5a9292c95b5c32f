package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CellKind is the type a raw cell was coerced to
type CellKind string

const (
	KindMissing   CellKind = "missing"
	KindNumeric   CellKind = "numeric"
	KindBoolean   CellKind = "boolean"
	KindTimestamp CellKind = "timestamp"
	KindString    CellKind = "string"
)

// Cell is a coerced value; only the field matching Kind is meaningful
type Cell struct {
	Kind   CellKind
	Number float64
	Bool   bool
	Time   time.Time
	Text   string
}

// TypeCoercer handles deterministic type coercion of spreadsheet cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // % of values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // % of values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // % of values that must parse as timestamps
	NormalizeStrings   bool    `json:"normalize_strings"`   // Whether to trim/lower strings
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
		NormalizeStrings:   true,
	}
}

// TimestampLayouts are tried in order when parsing timestamps
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// CoerceValue deterministically converts an unknown value to a typed Cell.
// Numbers win over booleans, so "1" and "0" are numeric.
func (c *TypeCoercer) CoerceValue(rawValue interface{}) Cell {
	if rawValue == nil {
		return Cell{Kind: KindMissing}
	}

	strVal := c.toString(rawValue)
	if strings.TrimSpace(strVal) == "" {
		return Cell{Kind: KindMissing}
	}

	if v, ok := c.ParseNumeric(strVal); ok {
		return Cell{Kind: KindNumeric, Number: v}
	}
	if b, ok := c.parseBoolean(strVal); ok {
		return Cell{Kind: KindBoolean, Bool: b}
	}
	if t, ok := c.ParseTimestamp(strVal); ok {
		return Cell{Kind: KindTimestamp, Time: t}
	}
	return c.coerceToString(strVal)
}

// AnalyzeTypeDistribution analyzes a sample to determine the best type coercion strategy
func (c *TypeCoercer) AnalyzeTypeDistribution(values []interface{}) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		strVal := c.toString(val)
		if val == nil || strings.TrimSpace(strVal) == "" {
			continue
		}
		analysis.ValidCount++

		if _, ok := c.ParseNumeric(strVal); ok {
			analysis.NumericCount++
		}
		if _, ok := c.parseBoolean(strVal); ok {
			analysis.BooleanCount++
		}
		if _, ok := c.ParseTimestamp(strVal); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

func (c *TypeCoercer) coerceToString(strVal string) Cell {
	if c.config.NormalizeStrings {
		strVal = c.normalizeString(strVal)
	}
	if strVal == "" {
		return Cell{Kind: KindMissing}
	}
	return Cell{Kind: KindString, Text: strVal}
}

// ParseNumeric parses a number with strict rules.
// Handles parentheses for negatives, European decimals and currency symbols.
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the last comma is followed by up to three digits
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && isDigits(afterComma) && commaIdx > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *TypeCoercer) parseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "yes", "y", "on":
		return true, true
	case "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// ParseTimestamp parses strVal with the first matching layout of TimestampLayouts
func (c *TypeCoercer) ParseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespace.ReplaceAllString(s, " ")

	// Remove control characters
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// toString converts interface{} to string safely
func (c *TypeCoercer) toString(val interface{}) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) CellKind {
	if analysis.ValidCount == 0 {
		return KindMissing
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return KindNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return KindBoolean
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return KindTimestamp
	}
	return KindString
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int      `json:"total_count"`
	ValidCount      int      `json:"valid_count"`
	NumericCount    int      `json:"numeric_count"`
	BooleanCount    int      `json:"boolean_count"`
	TimestampCount  int      `json:"timestamp_count"`
	NumericRatio    float64  `json:"numeric_ratio"`
	BooleanRatio    float64  `json:"boolean_ratio"`
	TimestampRatio  float64  `json:"timestamp_ratio"`
	RecommendedType CellKind `json:"recommended_type"`
}
