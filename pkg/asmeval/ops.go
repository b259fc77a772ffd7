package asmeval

import (
	"fmt"
	"math"
	"strings"
)

// add implements `+`: string concatenation when both operands are strings
// (spec §4.5's sole string-typed operator besides comparison), numeric
// addition otherwise.
func add(l, r Value) (Value, error) {
	if l.Kind == KindString && r.Kind == KindString {
		return StringValue(l.Str + r.Str), nil
	}
	return numBinOp(l, r, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })
}

// numBinOp applies intFn when both operands are plain integers, otherwise
// coerces both to float64, applies floatFn, and returns a fixed-point Value.
// Strings are rejected by asFloat/AsInt's own type-mismatch error.
func numBinOp(l, r Value, floatFn func(a, b float64) float64, intFn func(a, b int64) int64) (Value, error) {
	if l.Kind == KindInt && r.Kind == KindInt {
		return IntValue(intFn(l.Int, r.Int)), nil
	}
	lf, err := l.asFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.asFloat()
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindFixed, Fixed: floatToFixed(floatFn(lf, rf))}, nil
}

func intBinOp(l, r Value, fn func(a, b int64) int64) (Value, error) {
	li, err := l.AsInt()
	if err != nil {
		return Value{}, err
	}
	ri, err := r.AsInt()
	if err != nil {
		return Value{}, err
	}
	return IntValue(fn(li, ri)), nil
}

func divide(l, r Value) (Value, error) {
	if l.Kind == KindInt && r.Kind == KindInt {
		if r.Int == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntValue(l.Int / r.Int), nil
	}
	lf, err := l.asFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.asFloat()
	if err != nil {
		return Value{}, err
	}
	if rf == 0 {
		return Value{}, ErrDivideByZero
	}
	return Value{Kind: KindFixed, Fixed: floatToFixed(lf / rf)}, nil
}

func modulo(l, r Value) (Value, error) {
	if l.Kind == KindInt && r.Kind == KindInt {
		if r.Int == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntValue(l.Int % r.Int), nil
	}
	lf, err := l.asFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.asFloat()
	if err != nil {
		return Value{}, err
	}
	if rf == 0 {
		return Value{}, ErrDivideByZero
	}
	return Value{Kind: KindFixed, Fixed: floatToFixed(math.Mod(lf, rf))}, nil
}

func power(l, r Value) (Value, error) {
	if l.Kind == KindInt && r.Kind == KindInt {
		if r.Int < 0 {
			return Value{}, ErrNegativeExponent
		}
		result := int64(1)
		base := l.Int
		for i := int64(0); i < r.Int; i++ {
			result *= base
		}
		return IntValue(result), nil
	}
	lf, err := l.asFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.asFloat()
	if err != nil {
		return Value{}, err
	}
	if rf < 0 {
		return Value{}, ErrNegativeExponent
	}
	return Value{Kind: KindFixed, Fixed: floatToFixed(math.Pow(lf, rf))}, nil
}

func shift(l, r Value, left bool) (Value, error) {
	li, err := l.AsInt()
	if err != nil {
		return Value{}, err
	}
	ri, err := r.AsInt()
	if err != nil {
		return Value{}, err
	}
	if ri < 0 || ri > 63 {
		return Value{}, ErrShiftOutOfRange
	}
	if left {
		return IntValue(li << uint(ri)), nil
	}
	return IntValue(li >> uint(ri)), nil
}

func negate(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return IntValue(-v.Int), nil
	case KindFixed:
		f, err := v.asFloat()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFixed, Fixed: floatToFixed(-f)}, nil
	default:
		return Value{}, fmt.Errorf("%w: cannot negate a string", ErrTypeMismatch)
	}
}

func logicalAnd(l, r Value) (Value, error) {
	li, err := l.AsInt()
	if err != nil {
		return Value{}, err
	}
	ri, err := r.AsInt()
	if err != nil {
		return Value{}, err
	}
	if li != 0 && ri != 0 {
		return IntValue(1), nil
	}
	return IntValue(0), nil
}

func logicalOr(l, r Value) (Value, error) {
	li, err := l.AsInt()
	if err != nil {
		return Value{}, err
	}
	ri, err := r.AsInt()
	if err != nil {
		return Value{}, err
	}
	if li != 0 || ri != 0 {
		return IntValue(1), nil
	}
	return IntValue(0), nil
}

// compare implements the six relational/equality operators. Two strings
// compare lexicographically; any other combination coerces both sides to a
// number, per spec §4.5's "binary operators coerce both operands to integer
// except ... comparison on two strings".
func compare(l, r Value, op string) (Value, error) {
	if l.Kind == KindString && r.Kind == KindString {
		return boolValue(stringCompare(l.Str, r.Str, op)), nil
	}
	lf, err := l.asFloat()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.asFloat()
	if err != nil {
		return Value{}, err
	}
	var result bool
	switch op {
	case "==":
		result = lf == rf
	case "!=":
		result = lf != rf
	case "<":
		result = lf < rf
	case "<=":
		result = lf <= rf
	case ">":
		result = lf > rf
	case ">=":
		result = lf >= rf
	}
	return boolValue(result), nil
}

func stringCompare(l, r, op string) bool {
	c := strings.Compare(l, r)
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}
