// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package timeval

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-core-stack/capacity/errors"
)

// "ms" is listed ahead of "s" so "250ms" is not read as 250 seconds
var durationToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ms|s|min|h|day|week|month|year)`)

// Parse reads free text such as "1h30min" or "2.5s", summing every
// matched token, and returns the total in its best unit.
func Parse(text string) (Value, error) {
	matches := durationToken.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Value{}, errors.Wrapf(errors.InvalidArgument, "no duration found in %q", text)
	}
	var totalMs float64
	for _, m := range matches {
		magnitude, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Value{}, errors.Wrapf(errors.InvalidArgument, "invalid magnitude %q: %s", m[1], err)
		}
		unit, err := ParseUnit(m[2])
		if err != nil {
			return Value{}, err
		}
		totalMs += magnitude * unit.Milliseconds()
	}
	return BestUnit(totalMs), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// BestUnit picks the coarsest unit in which ms is still at least one.
func BestUnit(ms float64) Value {
	unit := Millisecond
	switch {
	case ms < unitFactors[Second]:
		unit = Millisecond
	case ms < unitFactors[Minute]:
		unit = Second
	case ms < unitFactors[Hour]:
		unit = Minute
	case ms < unitFactors[Day]:
		unit = Hour
	case ms < unitFactors[Week]:
		unit = Day
	case ms < unitFactors[Month]:
		unit = Week
	case ms < unitFactors[Year]:
		unit = Month
	default:
		unit = Year
	}
	return Millis(ms).To(unit)
}

// Format renders v for humans as days, hours, minutes, seconds and
// milliseconds, e.g. "1day2h30min". A zero value renders as "0s".
func Format(v Value) string {
	total := v.Milliseconds()
	if total < 0 {
		return "-" + Format(Millis(-total))
	}
	parts := []struct {
		unit   Unit
		symbol string
	}{
		{Day, "day"},
		{Hour, "h"},
		{Minute, "min"},
		{Second, "s"},
	}
	var b strings.Builder
	rem := total
	for _, p := range parts {
		n := math.Floor(rem / p.unit.Milliseconds())
		if n > 0 {
			b.WriteString(strconv.FormatFloat(n, 'f', -1, 64))
			b.WriteString(p.symbol)
			rem -= n * p.unit.Milliseconds()
		}
	}
	if ms := math.Floor(rem); ms > 0 {
		b.WriteString(strconv.FormatFloat(ms, 'f', -1, 64))
		b.WriteString("ms")
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
