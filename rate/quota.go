// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package rate

import (
	"math"
	"strconv"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// QuotaWindow caps usage at units per period, renewing in full at
// each period boundary.
type QuotaWindow struct {
	units  float64
	period timeval.Value
}

// NewQuotaWindow validates and builds a quota of units per period.
func NewQuotaWindow(units float64, period timeval.Value) (QuotaWindow, error) {
	if units <= 0 || math.IsNaN(units) || math.IsInf(units, 0) {
		return QuotaWindow{}, errors.Wrapf(errors.InvalidArgument, "quota units must be positive, got %v", units)
	}
	if period.Milliseconds() <= 0 {
		return QuotaWindow{}, errors.Wrapf(errors.InvalidArgument, "quota period must be positive, got %s", period)
	}
	return QuotaWindow{units: units, period: period}, nil
}

// MustQuotaWindow is like NewQuotaWindow but panics on invalid input.
func MustQuotaWindow(units float64, period timeval.Value) QuotaWindow {
	q, err := NewQuotaWindow(units, period)
	if err != nil {
		panic(err)
	}
	return q
}

func (q QuotaWindow) Units() float64 {
	return q.units
}

func (q QuotaWindow) Period() timeval.Value {
	return q.period
}

// CapacityAt returns the quota granted by t as a pure step function.
func (q QuotaWindow) CapacityAt(t timeval.Value) float64 {
	return stepCapacity(q.units, q.period.Milliseconds(), t.Milliseconds())
}

// CapacityDuring returns the quota granted in (start, end].
func (q QuotaWindow) CapacityDuring(start, end timeval.Value) (float64, error) {
	if err := checkRange(start, end); err != nil {
		return 0, err
	}
	return q.CapacityAt(end) - q.CapacityAt(start), nil
}

// MinTime returns the earliest instant at which goal units have been
// granted.
func (q QuotaWindow) MinTime(goal float64, unit ...timeval.Unit) (timeval.Value, error) {
	return stepMinTime(q.units, q.period, goal, unit...)
}

// ConvertToLargest re-expresses the finer of q and other over the
// coarser period.
func (q QuotaWindow) ConvertToLargest(other QuotaWindow) QuotaWindow {
	fine, coarse := q, other
	if fine.period.Milliseconds() > coarse.period.Milliseconds() {
		fine, coarse = coarse, fine
	}
	return fine.ScaledTo(coarse.period)
}

// ScaledTo proportionally re-expresses q over window.
func (q QuotaWindow) ScaledTo(window timeval.Value) QuotaWindow {
	return QuotaWindow{
		units:  q.units * window.Milliseconds() / q.period.Milliseconds(),
		period: window,
	}
}

func (q QuotaWindow) String() string {
	return strconv.FormatFloat(q.units, 'f', -1, 64) + "/" + q.period.String()
}
