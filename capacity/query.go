// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"math"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// CapacityAt returns the requests available by t, including the grant
// at the origin. Times past the active ceiling are clamped to it and
// times before the origin have no capacity.
func (m *Model) CapacityAt(t timeval.Value) float64 {
	return m.capacityMs(t.Milliseconds())
}

func (m *Model) capacityMs(ms float64) float64 {
	if ms < 0 {
		return 0
	}
	return m.limits.capacity(m.effective(ms), m.top())
}

// CapacityDuring returns the requests granted in (start, end].
func (m *Model) CapacityDuring(start, end timeval.Value) (float64, error) {
	if end.Milliseconds() <= start.Milliseconds() {
		return 0, errors.Wrapf(errors.InvalidArgument, "end %s must be after start %s", end, start)
	}
	return m.CapacityAt(end) - m.CapacityAt(start), nil
}

// MinTime returns the earliest instant by which goal requests are
// available, in unit when given or the base rate's period unit
// otherwise. A goal the model cannot reach within its active ceiling
// is reported as OutOfRange.
func (m *Model) MinTime(goal float64, unit ...timeval.Unit) (timeval.Value, error) {
	if goal < 0 || math.IsNaN(goal) || math.IsInf(goal, 0) {
		return timeval.Value{}, errors.Wrapf(errors.InvalidArgument, "capacity goal must be non-negative, got %v", goal)
	}
	if goal != math.Trunc(goal) {
		return timeval.Value{}, errors.Wrapf(errors.InvalidArgument, "capacity goal must be a whole number of requests, got %v", goal)
	}
	ms := m.limits.minTime(goal, m.top())
	if m.maxActive != nil && ms > m.maxActive.Milliseconds() {
		return timeval.Value{}, errors.Wrapf(errors.OutOfRange,
			"goal %v needs %s, beyond active time %s", goal, timeval.Format(timeval.Millis(ms)), *m.maxActive)
	}
	return m.toValue(ms, unit...), nil
}

func (m *Model) toValue(ms float64, unit ...timeval.Unit) timeval.Value {
	if ms == 0 {
		return timeval.Zero
	}
	target := m.rate.Period().Unit()
	if len(unit) > 0 {
		target = unit[0]
	}
	return timeval.Millis(ms).To(target)
}

// ExhaustionThresholds returns, for each quota, the earliest instant
// at which the tiers below it first accumulate the quota's units.
func (m *Model) ExhaustionThresholds() []timeval.Value {
	ms := m.thresholdsMs()
	out := make([]timeval.Value, len(ms))
	for i, t := range ms {
		out[i] = m.toValue(t)
	}
	return out
}

func (m *Model) thresholdsMs() []float64 {
	out := make([]float64, 0, m.top())
	for i := 1; i < len(m.limits); i++ {
		out = append(out, m.limits.minTime(m.limits[i].units, i-1))
	}
	return out
}
