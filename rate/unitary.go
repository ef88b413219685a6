// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package rate

import (
	"math"
	"strconv"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// tolerance applied before flooring ratios that should be integral
// but come out of float division a hair short
const floorEpsilon = 1e-9

// relative distance to an integer under which a quotient is taken to
// be that integer, well above float64 rounding and below the gap one
// millisecond leaves in any period shorter than thirty years
const stepTolerance = 1e-12

// UnitaryRate grants units requests every period, starting with a
// full grant at t=0. period/units is the smallest indivisible grant
// interval of the rate.
type UnitaryRate struct {
	units  float64
	period timeval.Value
}

// RateOption customises a UnitaryRate at construction.
type RateOption func(*rateOptions)

type rateOptions struct {
	factor float64
}

// WithAccelerationFactor re-expresses the rate at construction as
// fa units per fa unitary intervals. fa must be an integer in
// [1, MaxFactor].
func WithAccelerationFactor(fa float64) RateOption {
	return func(o *rateOptions) {
		o.factor = fa
	}
}

// NewUnitaryRate validates and builds a rate of units per period.
func NewUnitaryRate(units float64, period timeval.Value, opts ...RateOption) (UnitaryRate, error) {
	if units <= 0 || math.IsNaN(units) || math.IsInf(units, 0) {
		return UnitaryRate{}, errors.Wrapf(errors.InvalidArgument, "rate units must be positive, got %v", units)
	}
	if period.Milliseconds() <= 0 {
		return UnitaryRate{}, errors.Wrapf(errors.InvalidArgument, "rate period must be positive, got %s", period)
	}
	r := UnitaryRate{units: units, period: period}

	o := &rateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.factor != 0 {
		return r.EquivalentRate(o.factor)
	}
	return r, nil
}

// MustUnitaryRate is like NewUnitaryRate but panics on invalid input.
func MustUnitaryRate(units float64, period timeval.Value, opts ...RateOption) UnitaryRate {
	r, err := NewUnitaryRate(units, period, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Units returns the number of requests granted per period.
func (r UnitaryRate) Units() float64 {
	return r.units
}

// Period returns the renewal period of the rate.
func (r UnitaryRate) Period() timeval.Value {
	return r.period
}

// Interval returns period/units in milliseconds.
func (r UnitaryRate) Interval() float64 {
	return r.period.Milliseconds() / r.units
}

// Speed is the sustained throughput in requests per millisecond.
func (r UnitaryRate) Speed() float64 {
	return r.units / r.period.Milliseconds()
}

// IsUnitary reports whether a single request is granted per period.
func (r UnitaryRate) IsUnitary() bool {
	return r.units == 1
}

// MaxFactor returns the largest integer acceleration factor the rate
// can be re-expressed with.
func (r UnitaryRate) MaxFactor() float64 {
	if r.IsUnitary() {
		return 1
	}
	return math.Floor(r.period.Milliseconds()/r.Interval() + floorEpsilon)
}

// EquivalentRate re-expresses the rate as fa units every fa unitary
// intervals. Throughput is preserved exactly.
func (r UnitaryRate) EquivalentRate(fa float64) (UnitaryRate, error) {
	if fa != math.Trunc(fa) {
		return UnitaryRate{}, errors.Wrapf(errors.InvalidArgument,
			"acceleration factor must be a whole number, got %v", fa)
	}
	if maxFa := r.MaxFactor(); fa <= 0 || fa > maxFa {
		return UnitaryRate{}, errors.Wrapf(errors.InvalidArgument,
			"acceleration factor must be in [1, %v], got %v", maxFa, fa)
	}
	return UnitaryRate{
		units:  fa,
		period: timeval.Millis(r.Interval() * fa),
	}, nil
}

// CapacityAt returns the accumulated grants by t, inclusive of the
// grant issued at t=0.
func (r UnitaryRate) CapacityAt(t timeval.Value) float64 {
	return stepCapacity(r.units, r.period.Milliseconds(), t.Milliseconds())
}

// CapacityDuring returns the grants issued in (start, end].
func (r UnitaryRate) CapacityDuring(start, end timeval.Value) (float64, error) {
	if err := checkRange(start, end); err != nil {
		return 0, err
	}
	return r.CapacityAt(end) - r.CapacityAt(start), nil
}

// MinTime returns the earliest instant at which goal requests have
// been granted, in the requested unit or the rate's own period unit.
func (r UnitaryRate) MinTime(goal float64, unit ...timeval.Unit) (timeval.Value, error) {
	return stepMinTime(r.units, r.period, goal, unit...)
}

// ConvertToLargest re-expresses the finer of r and other over the
// coarser period.
func (r UnitaryRate) ConvertToLargest(other UnitaryRate) UnitaryRate {
	fine, coarse := r, other
	if fine.period.Milliseconds() > coarse.period.Milliseconds() {
		fine, coarse = coarse, fine
	}
	units := fine.units * coarse.period.Milliseconds() / fine.period.Milliseconds()
	return UnitaryRate{units: units, period: coarse.period}
}

// ConvertToSmallest re-expresses the coarser of r and other over the
// finer period.
func (r UnitaryRate) ConvertToSmallest(other UnitaryRate) UnitaryRate {
	fine, coarse := r, other
	if fine.period.Milliseconds() > coarse.period.Milliseconds() {
		fine, coarse = coarse, fine
	}
	units := coarse.units * fine.period.Milliseconds() / coarse.period.Milliseconds()
	return UnitaryRate{units: units, period: fine.period}
}

// ConvertToMyUnit re-expresses other over r's period. The scale is
// rounded up so the converted rate never under-counts.
func (r UnitaryRate) ConvertToMyUnit(other UnitaryRate) UnitaryRate {
	scale := math.Ceil(other.period.Milliseconds() / r.period.Milliseconds())
	return UnitaryRate{units: other.units * scale, period: r.period}
}

func (r UnitaryRate) String() string {
	return strconv.FormatFloat(r.units, 'f', -1, 64) + "/" + r.period.String()
}

// Steps returns the number of whole periods elapsed by tMs. A
// quotient within float error of an integer counts as reaching it, so
// periods derived from EquivalentRate step exactly on their boundary.
func Steps(tMs, periodMs float64) float64 {
	return floorTolerant(tMs / periodMs)
}

func floorTolerant(x float64) float64 {
	if n := math.Round(x); math.Abs(x-n) <= stepTolerance*math.Max(1, math.Abs(x)) {
		return n
	}
	return math.Floor(x)
}

func stepCapacity(units, periodMs, tMs float64) float64 {
	return units * (Steps(tMs, periodMs) + 1)
}

func stepMinTime(units float64, period timeval.Value, goal float64, unit ...timeval.Unit) (timeval.Value, error) {
	if goal < 0 || math.IsNaN(goal) {
		return timeval.Value{}, errors.Wrapf(errors.InvalidArgument, "capacity goal must be non-negative, got %v", goal)
	}
	if goal == 0 {
		return timeval.Zero, nil
	}
	ms := floorTolerant((goal - 1) * period.Milliseconds() / units)
	if ms == 0 {
		return timeval.Zero, nil
	}
	target := period.Unit()
	if len(unit) > 0 {
		target = unit[0]
	}
	return timeval.Millis(ms).To(target), nil
}

func checkRange(start, end timeval.Value) error {
	if end.Milliseconds() <= start.Milliseconds() {
		return errors.Wrapf(errors.InvalidArgument, "end %s must be after start %s", end, start)
	}
	return nil
}
