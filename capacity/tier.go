// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"math"

	"github.com/go-core-stack/capacity/rate"
)

// tier is one level of the stack, the base rate sits at index 0
type tier struct {
	base     bool
	units    float64
	periodMs float64
}

// stack of tiers ordered finest to coarsest
type stack []tier

// capacity accumulated by t milliseconds under tiers [0..i]. Within
// a window of tier i growth follows tier i-1, clamped at tier i's cap.
func (s stack) capacity(t float64, i int) float64 {
	l := s[i]
	if l.base || i == 0 {
		return l.units * (rate.Steps(t, l.periodMs) + 1)
	}
	n := rate.Steps(t, l.periodMs)
	residual := t - n*l.periodMs
	return l.units*n + math.Min(s.capacity(residual, i-1), l.units)
}

// minTime inverts capacity for tiers [0..top], walking from the
// coarsest window down and finishing with base rate batches. The
// result is rounded up to a whole millisecond.
func (s stack) minTime(goal float64, top int) float64 {
	var t float64
	for i := top; i >= 1 && goal > 0; i-- {
		l := s[i]
		nu := math.Floor(goal / l.units)
		n := nu
		if goal == nu*l.units {
			// landing on a window boundary is served by the window
			// itself, not the next one
			n = nu - 1
		}
		t += n * l.periodMs
		goal -= n * l.units
	}
	if base := s[0]; goal > base.units {
		batches := math.Ceil(goal / base.units)
		t += (batches - 1) * base.periodMs
	}
	if t <= 0 {
		return 0
	}
	return math.Ceil(t - 1e-6)
}
