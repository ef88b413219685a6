// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package timeval

import (
	"github.com/go-core-stack/capacity/errors"
)

// Unit is the granularity in which a time value is expressed.
type Unit int

const (
	Millisecond Unit = iota
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

// conversion factors to milliseconds, month and year are fixed
// calendar approximations of 30 and 360 days
var unitFactors = [...]float64{
	Millisecond: 1,
	Second:      1000,
	Minute:      60 * 1000,
	Hour:        60 * 60 * 1000,
	Day:         24 * 60 * 60 * 1000,
	Week:        7 * 24 * 60 * 60 * 1000,
	Month:       30 * 24 * 60 * 60 * 1000,
	Year:        360 * 24 * 60 * 60 * 1000,
}

var unitSymbols = [...]string{
	Millisecond: "ms",
	Second:      "s",
	Minute:      "min",
	Hour:        "h",
	Day:         "day",
	Week:        "week",
	Month:       "month",
	Year:        "year",
}

// Units lists every supported unit from finest to coarsest.
func Units() []Unit {
	return []Unit{Millisecond, Second, Minute, Hour, Day, Week, Month, Year}
}

// Valid reports whether u is one of the enumerated units.
func (u Unit) Valid() bool {
	return u >= Millisecond && u <= Year
}

// Milliseconds returns the number of milliseconds in one u.
func (u Unit) Milliseconds() float64 {
	if !u.Valid() {
		return 0
	}
	return unitFactors[u]
}

// String returns the symbol used for u in the duration grammar.
func (u Unit) String() string {
	if !u.Valid() {
		return "invalid"
	}
	return unitSymbols[u]
}

// Finer returns the unit immediately below u.
func (u Unit) Finer() (Unit, error) {
	if !u.Valid() {
		return u, errors.Wrapf(errors.InvalidArgument, "invalid time unit %d", int(u))
	}
	if u == Millisecond {
		return u, errors.Wrap(errors.InvalidArgument, "no unit finer than ms")
	}
	return u - 1, nil
}

// ParseUnit resolves a unit symbol such as "ms", "min" or "week".
func ParseUnit(symbol string) (Unit, error) {
	for i, s := range unitSymbols {
		if s == symbol {
			return Unit(i), nil
		}
	}
	return Millisecond, errors.Wrapf(errors.InvalidArgument, "unknown time unit %q", symbol)
}
