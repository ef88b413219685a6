// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package rate

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// splitLimit breaks "N/duration" into its unit count and period, a
// bare unit such as "10/s" is read as one of that unit
func splitLimit(text string) (float64, timeval.Value, error) {
	count, window, ok := strings.Cut(strings.TrimSpace(text), "/")
	if !ok {
		return 0, timeval.Value{}, errors.Wrapf(errors.InvalidArgument, "limit %q is not of the form N/duration", text)
	}
	units, err := strconv.ParseFloat(strings.TrimSpace(count), 64)
	if err != nil {
		return 0, timeval.Value{}, errors.Wrapf(errors.InvalidArgument, "limit %q has invalid count: %s", text, err)
	}
	window = strings.TrimSpace(window)
	if window != "" && !unicode.IsDigit(rune(window[0])) {
		window = "1" + window
	}
	period, err := timeval.Parse(window)
	if err != nil {
		return 0, timeval.Value{}, err
	}
	return units, period, nil
}

// ParseUnitary reads a rate written as "10/1s" or "10/s".
func ParseUnitary(text string) (UnitaryRate, error) {
	units, period, err := splitLimit(text)
	if err != nil {
		return UnitaryRate{}, err
	}
	return NewUnitaryRate(units, period)
}

// ParseQuota reads a quota written as "1800/1h".
func ParseQuota(text string) (QuotaWindow, error) {
	units, period, err := splitLimit(text)
	if err != nil {
		return QuotaWindow{}, err
	}
	return NewQuotaWindow(units, period)
}
