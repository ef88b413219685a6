// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// MaxSamples bounds the number of grid points a single sampling call
// may produce.
const MaxSamples = 1_000_000

// Point is a capacity reading at an instant given in milliseconds.
type Point struct {
	TimeMs   float64 `json:"time_ms" yaml:"time_ms"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// Time returns the instant of the point.
func (p Point) Time() timeval.Value {
	return timeval.Millis(p.TimeMs)
}

func (m *Model) horizonMs(horizon timeval.Value) (float64, error) {
	ms := horizon.Milliseconds()
	if ms < 0 || math.IsNaN(ms) {
		return 0, errors.Wrapf(errors.InvalidArgument, "horizon must not be negative, got %s", horizon)
	}
	return m.effective(ms), nil
}

// InflectionPoints returns the vertices of the capacity curve up to
// horizon: for every window of every quota its start, the instant the
// quota is exhausted and the last instant of its plateau. Interior
// points lying on a flat run are pruned. The first and last points are
// always the origin and the horizon.
func (m *Model) InflectionPoints(horizon timeval.Value) ([]Point, error) {
	h, err := m.horizonMs(horizon)
	if err != nil {
		return nil, err
	}

	knots := map[float64]float64{}
	add := func(t float64) {
		knots[t] = m.limits.capacity(t, m.top())
	}
	add(0)
	add(h)

	thresholds := m.thresholdsMs()
	for i := 1; i < len(m.limits); i++ {
		period := m.limits[i].periodMs
		for k := 0.0; k*period < h; k++ {
			start := k * period
			add(start)
			exhausted := min(start+thresholds[i-1], h)
			add(exhausted)
			end := start + period
			if end >= h {
				break
			}
			// capacity renews at end, the plateau lasts until just before
			if plateau := end - 1; plateau > exhausted {
				add(plateau)
			}
		}
	}

	times := make([]float64, 0, len(knots))
	for t := range knots {
		times = append(times, t)
	}
	slices.Sort(times)
	points := make([]Point, len(times))
	for i, t := range times {
		points[i] = Point{TimeMs: t, Capacity: knots[t]}
	}
	return prunePlateaus(points), nil
}

func prunePlateaus(points []Point) []Point {
	if len(points) <= 2 {
		return points
	}
	pruned := []Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]
		if prev.Capacity == curr.Capacity && curr.Capacity == next.Capacity {
			continue
		}
		pruned = append(pruned, curr)
	}
	return append(pruned, points[len(points)-1])
}

// Sample evaluates the accumulated capacity on a grid from the origin
// to horizon, stepping by the base rate period. The horizon itself is
// always the last sample.
func (m *Model) Sample(horizon timeval.Value) ([]Point, error) {
	grid, err := m.grid(horizon)
	if err != nil {
		return nil, err
	}
	return m.evaluate(grid, func(t float64) float64 {
		return m.limits.capacity(t, m.top())
	})
}

// SampleInstantaneous evaluates the capacity available within the
// current window of the coarsest tier on the same grid as Sample.
func (m *Model) SampleInstantaneous(horizon timeval.Value) ([]Point, error) {
	grid, err := m.grid(horizon)
	if err != nil {
		return nil, err
	}
	coarsest := m.limits[m.top()].periodMs
	return m.evaluate(grid, func(t float64) float64 {
		return m.limits.capacity(math.Mod(t, coarsest), m.top())
	})
}

func (m *Model) grid(horizon timeval.Value) ([]float64, error) {
	h, err := m.horizonMs(horizon)
	if err != nil {
		return nil, err
	}
	step := m.limits[0].periodMs
	count := math.Floor(h/step) + 1
	if count > MaxSamples {
		return nil, errors.Wrapf(errors.OutOfRange,
			"horizon %s needs %v samples at %s, limit is %d", horizon, count, m.rate.Period(), MaxSamples)
	}
	grid := make([]float64, 0, int(count)+1)
	for i := 0.0; i < count; i++ {
		grid = append(grid, i*step)
	}
	if grid[len(grid)-1] < h {
		grid = append(grid, h)
	}
	return grid, nil
}

// evaluate maps f over grid in contiguous chunks, one per worker.
func (m *Model) evaluate(grid []float64, f func(float64) float64) ([]Point, error) {
	out := make([]Point, len(grid))
	workers := max(m.workers, 1)
	chunk := (len(grid) + workers - 1) / workers

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for lo := 0; lo < len(grid); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(grid))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = Point{TimeMs: grid[i], Capacity: f(grid[i])}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
