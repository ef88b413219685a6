// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// Fraction is a point of a normalized curve, time as a share of the
// quota period and capacity as a share of the quota units.
type Fraction struct {
	Time     float64 `json:"time" yaml:"time"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// WindowAnalysis describes how one window of the first quota fills
// and drains. Load ramps from the base rate grant to the quota at the
// exhaustion threshold, Discharge mirrors it from the end of the
// window. When the two ramps leave room in between the window has a
// plateau, otherwise they cross at Intersection.
type WindowAnalysis struct {
	Threshold  timeval.Value `json:"threshold" yaml:"threshold"`
	Period     timeval.Value `json:"period" yaml:"period"`
	QuotaUnits float64       `json:"quota_units" yaml:"quota_units"`
	RateUnits  float64       `json:"rate_units" yaml:"rate_units"`

	Load      []Point `json:"load" yaml:"load"`
	Discharge []Point `json:"discharge" yaml:"discharge"`
	Window    []Point `json:"window" yaml:"window"`

	NormalizedLoad      []Fraction `json:"normalized_load" yaml:"normalized_load"`
	NormalizedDischarge []Fraction `json:"normalized_discharge" yaml:"normalized_discharge"`
	NormalizedWindow    []Fraction `json:"normalized_window" yaml:"normalized_window"`

	Plateau                []Point    `json:"plateau,omitempty" yaml:"plateau,omitempty"`
	NormalizedPlateau      []Fraction `json:"normalized_plateau,omitempty" yaml:"normalized_plateau,omitempty"`
	Intersection           *Point     `json:"intersection,omitempty" yaml:"intersection,omitempty"`
	NormalizedIntersection *Fraction  `json:"normalized_intersection,omitempty" yaml:"normalized_intersection,omitempty"`
}

// AnalyzeWindow computes the load and discharge shape of the first
// quota window of m.
func (m *Model) AnalyzeWindow() (*WindowAnalysis, error) {
	if len(m.quotas) == 0 {
		return nil, errors.Wrapf(errors.InvalidArgument, "model %s has no quota to analyze", m)
	}
	thr := m.thresholdsMs()[0]
	period := m.limits[1].periodMs
	q := m.limits[1].units
	r := m.limits[0].units

	a := &WindowAnalysis{
		Threshold:  m.toValue(thr),
		Period:     m.quotas[0].Period(),
		QuotaUnits: q,
		RateUnits:  r,
		Load:       []Point{{0, r}, {thr, q}, {period, q}},
		Discharge:  []Point{{0, q}, {period - thr, q}, {period, r}},
		Window:     []Point{{0, r}, {thr, q}, {period - thr, q}, {period, r}},
	}
	normalize := func(points []Point) []Fraction {
		out := make([]Fraction, len(points))
		for i, p := range points {
			out[i] = Fraction{Time: p.TimeMs / period, Capacity: p.Capacity / q}
		}
		return out
	}
	a.NormalizedLoad = normalize(a.Load)
	a.NormalizedDischarge = normalize(a.Discharge)
	a.NormalizedWindow = normalize(a.Window)

	if 2*thr < period {
		a.Plateau = []Point{{thr, q}, {period - thr, q}}
		a.NormalizedPlateau = normalize(a.Plateau)
		return a, nil
	}

	load, discharge := a.NormalizedLoad, a.NormalizedDischarge
	if cut, ok := intersect(load[0], load[1], discharge[1], discharge[2]); ok {
		a.NormalizedIntersection = &cut
		a.Intersection = &Point{TimeMs: cut.Time * period, Capacity: cut.Capacity * q}
	}
	return a, nil
}

// intersect solves for the crossing of the line through a1, a2 with
// the line through b1, b2. Parallel or degenerate lines have none.
func intersect(a1, a2, b1, b2 Fraction) (Fraction, bool) {
	dxa, dxb := a2.Time-a1.Time, b2.Time-b1.Time
	if dxa == 0 || dxb == 0 {
		return Fraction{}, false
	}
	sa := (a2.Capacity - a1.Capacity) / dxa
	sb := (b2.Capacity - b1.Capacity) / dxb
	if sa == sb {
		return Fraction{}, false
	}
	x := (b1.Capacity - a1.Capacity + sa*a1.Time - sb*b1.Time) / (sa - sb)
	return Fraction{Time: x, Capacity: a1.Capacity + sa*(x-a1.Time)}, true
}
