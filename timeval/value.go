// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package timeval

import (
	"strconv"

	"github.com/go-core-stack/capacity/errors"
)

// Zero is the zero-duration sentinel returned when no time is needed.
var Zero = Value{magnitude: 0, unit: Second}

// Value is an immutable magnitude expressed in a Unit. Every
// arithmetic operation goes through milliseconds and returns a
// new Value in the left operand's unit.
type Value struct {
	magnitude float64
	unit      Unit
}

// New creates a Value, rejecting units outside the enumeration.
func New(magnitude float64, unit Unit) (Value, error) {
	if !unit.Valid() {
		return Value{}, errors.Wrapf(errors.InvalidArgument, "invalid time unit %d", int(unit))
	}
	return Value{magnitude: magnitude, unit: unit}, nil
}

// MustNew is like New but panics on an invalid unit, meant for
// literals where the unit is a compile time constant.
func MustNew(magnitude float64, unit Unit) Value {
	v, err := New(magnitude, unit)
	if err != nil {
		panic(err)
	}
	return v
}

// Millis returns a Value of ms milliseconds.
func Millis(ms float64) Value {
	return Value{magnitude: ms, unit: Millisecond}
}

// Magnitude returns the numeric part of v in its own unit.
func (v Value) Magnitude() float64 {
	return v.magnitude
}

// Unit returns the unit v is expressed in.
func (v Value) Unit() Unit {
	return v.unit
}

// Milliseconds returns v in milliseconds, the canonical base.
func (v Value) Milliseconds() float64 {
	return v.magnitude * v.unit.Milliseconds()
}

// To converts v into the target unit.
func (v Value) To(target Unit) Value {
	if !target.Valid() {
		target = v.unit
	}
	return Value{magnitude: v.Milliseconds() / target.Milliseconds(), unit: target}
}

// Add returns v + o in v's unit.
func (v Value) Add(o Value) Value {
	return Millis(v.Milliseconds() + o.Milliseconds()).To(v.unit)
}

// Sub returns v - o in v's unit.
func (v Value) Sub(o Value) Value {
	return Millis(v.Milliseconds() - o.Milliseconds()).To(v.unit)
}

// Scale returns v multiplied by k, keeping v's unit.
func (v Value) Scale(k float64) Value {
	return Value{magnitude: v.magnitude * k, unit: v.unit}
}

// IsZero reports whether v is a zero duration in any unit.
func (v Value) IsZero() bool {
	return v.magnitude == 0
}

// Compare returns -1, 0 or +1 comparing v and o in milliseconds.
func (v Value) Compare(o Value) int {
	a, b := v.Milliseconds(), o.Milliseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders v in the duration grammar, e.g. "2s" or "1.5h".
func (v Value) String() string {
	return strconv.FormatFloat(v.magnitude, 'f', -1, 64) + v.unit.String()
}
