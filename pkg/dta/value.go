package dta

import (
	"math"
	"strconv"
)

type valueKind uint8

const (
	missingValue valueKind = iota
	intValue
	realValue
	textValue
)

// Value is one cell. The zero Value is Missing.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	s    string
}

// Missing returns the explicit missing marker.
func Missing() Value { return Value{} }

// Int returns an integer cell.
func Int(i int64) Value { return Value{kind: intValue, i: i} }

// Real returns a floating point cell. NaN and infinities are stored as
// Missing since the format cannot carry them.
func Real(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{kind: realValue, f: f}
}

// Text returns a string cell.
func Text(s string) Value { return Value{kind: textValue, s: s} }

func (v Value) IsMissing() bool { return v.kind == missingValue }

func (v Value) Int() (int64, bool) { return v.i, v.kind == intValue }

func (v Value) Real() (float64, bool) { return v.f, v.kind == realValue }

func (v Value) Text() (string, bool) { return v.s, v.kind == textValue }

// Float returns the cell as a float64 for both integer and real cells.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case intValue:
		return float64(v.i), true
	case realValue:
		return v.f, true
	}
	return 0, false
}

// Interface returns nil, int64, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case intValue:
		return v.i
	case realValue:
		return v.f
	case textValue:
		return v.s
	}
	return nil
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case intValue:
		return v.i == o.i
	case realValue:
		return v.f == o.f
	case textValue:
		return v.s == o.s
	}
	return true
}

// String renders missing cells as ".".
func (v Value) String() string {
	switch v.kind {
	case intValue:
		return strconv.FormatInt(v.i, 10)
	case realValue:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case textValue:
		return v.s
	}
	return "."
}
