// Package period validates pre- and post-intervention boundaries against the
// index of an analysed frame and turns them into positional row ranges.
package period

import (
	"fmt"
	"reflect"
	"time"

	"causalimpact/domain/dataset"
	"causalimpact/domain/impact"
	"causalimpact/internal/errors"
)

// Validation messages
const (
	msgNotList     = "Input period must be of type list."
	msgTwoValues   = "Period must have two values regarding the beginning and end of the pre and post intervention data."
	msgNoneValue   = "Input period cannot have `None` values."
	msgIntOrStr    = "Input must contain either int or str."
	msgNeedsDate   = "If input period is string then input data must have index of type DatetimeIndex."
	msgNotInIndex  = "%v is not preset in data index."
	msgPreOrder    = "pre_period last number must be bigger than its first."
	msgPreSpan     = "pre_period must span at least 3 time points."
	msgPostOrder   = "post_period last number must be bigger than its first."
	msgOverlapping = "Values in training data cannot be present in the post-intervention data. " +
		"Please fix your pre_period value to cover at most one point less from when the intervention happened."
)

// MinPrePoints is the smallest number of rows a pre-period may cover
const MinPrePoints = 3

// LabelLayouts are the accepted formats of string period endpoints
var LabelLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Validate parses both periods against frame and checks their ordering, the
// pre-period span and that the periods do not overlap.
func Validate(pre, post interface{}, frame *dataset.Frame) (impact.Period, impact.Period, error) {
	prePeriod, err := Parse(pre, frame)
	if err != nil {
		return impact.Period{}, impact.Period{}, err
	}
	postPeriod, err := Parse(post, frame)
	if err != nil {
		return impact.Period{}, impact.Period{}, err
	}

	if !ordered(prePeriod) {
		return impact.Period{}, impact.Period{}, errors.PeriodError(msgPreOrder)
	}
	if prePeriod.Len() < MinPrePoints {
		return impact.Period{}, impact.Period{}, errors.PeriodError(msgPreSpan)
	}
	if !ordered(postPeriod) {
		return impact.Period{}, impact.Period{}, errors.PeriodError(msgPostOrder)
	}
	if prePeriod.End > postPeriod.Start {
		return impact.Period{}, impact.Period{}, errors.PeriodError(msgOverlapping)
	}
	return prePeriod, postPeriod, nil
}

// ordered reports whether the last endpoint lies strictly after the first.
// Label periods are closed, so their last row is End-1.
func ordered(p impact.Period) bool {
	last := p.End
	if p.StartLabel != "" {
		last = p.End - 1
	}
	return last > p.Start
}

// Parse converts a two-element period into a row range. Integer endpoints are
// read half-open, [a, b) with b allowed to equal the row count. Label endpoints
// are closed on the datetime index, so the row of b is included.
func Parse(p interface{}, frame *dataset.Frame) (impact.Period, error) {
	values, err := elements(p)
	if err != nil {
		return impact.Period{}, err
	}

	ints, strs, err := classify(values)
	if err != nil {
		return impact.Period{}, err
	}

	if ints != nil {
		for _, v := range ints {
			if v < 0 || v > frame.Rows() {
				return impact.Period{}, errors.Newf(errors.CodePeriodSemanticError, msgNotInIndex, v)
			}
		}
		return impact.Period{Start: ints[0], End: ints[1]}, nil
	}

	if !frame.HasDatetimeIndex() {
		return impact.Period{}, errors.TypeMismatch(msgNeedsDate)
	}
	start, err := locate(strs[0], frame)
	if err != nil {
		return impact.Period{}, err
	}
	end, err := locate(strs[1], frame)
	if err != nil {
		return impact.Period{}, err
	}
	return impact.Period{Start: start, End: end + 1, StartLabel: strs[0], EndLabel: strs[1]}, nil
}

func elements(p interface{}) ([]interface{}, error) {
	if p == nil {
		return nil, errors.TypeMismatch(msgNotList)
	}
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, errors.TypeMismatch(msgNotList)
	}
	if v.Len() != 2 {
		return nil, errors.PeriodError(msgTwoValues)
	}
	out := make([]interface{}, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out, nil
}

// classify returns the endpoints as ints or as strings; exactly one is non-nil
func classify(values []interface{}) ([]int, []string, error) {
	for _, v := range values {
		if isNone(v) {
			return nil, nil, errors.TypeMismatch(msgNoneValue)
		}
	}

	ints := make([]int, 0, len(values))
	strs := make([]string, 0, len(values))
	for _, v := range values {
		switch x := v.(type) {
		case int:
			ints = append(ints, x)
		case int8:
			ints = append(ints, int(x))
		case int16:
			ints = append(ints, int(x))
		case int32:
			ints = append(ints, int(x))
		case int64:
			ints = append(ints, int(x))
		case uint:
			ints = append(ints, int(x))
		case uint8:
			ints = append(ints, int(x))
		case uint16:
			ints = append(ints, int(x))
		case uint32:
			ints = append(ints, int(x))
		case uint64:
			ints = append(ints, int(x))
		case string:
			strs = append(strs, x)
		default:
			return nil, nil, errors.TypeMismatch(msgIntOrStr)
		}
	}

	switch {
	case len(ints) == len(values):
		return ints, nil, nil
	case len(strs) == len(values):
		return nil, strs, nil
	default:
		return nil, nil, errors.TypeMismatch(msgIntOrStr)
	}
}

func isNone(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func locate(label string, frame *dataset.Frame) (int, error) {
	ts, ok := parseLabel(label)
	if ok {
		if pos, found := frame.IndexOf(ts); found {
			return pos, nil
		}
	}
	return -1, errors.Newf(errors.CodePeriodSemanticError, msgNotInIndex, label)
}

func parseLabel(label string) (time.Time, bool) {
	for _, layout := range LabelLayouts {
		if ts, err := time.Parse(layout, label); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Bounds returns the period as the [start, end] pair it was given in: labels
// when it was label based, positions otherwise.
func Bounds(p impact.Period) []interface{} {
	if p.StartLabel != "" {
		return []interface{}{p.StartLabel, p.EndLabel}
	}
	return []interface{}{p.Start, p.End}
}

// String is a short human form used in logs
func String(pre, post impact.Period) string {
	return fmt.Sprintf("pre=%s post=%s", pre, post)
}
