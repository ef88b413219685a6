// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package fit

import (
	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// Coverage tells whether a plan keeps up with a demand over a horizon.
// When it does not, At is the first sampled instant where the demand
// asks for more than the plan has granted.
type Coverage struct {
	Covered        bool          `json:"covered" yaml:"covered"`
	Horizon        timeval.Value `json:"horizon" yaml:"horizon"`
	At             timeval.Value `json:"at,omitempty" yaml:"at,omitempty"`
	PlanCapacity   float64       `json:"plan_capacity,omitempty" yaml:"plan_capacity,omitempty"`
	DemandCapacity float64       `json:"demand_capacity,omitempty" yaml:"demand_capacity,omitempty"`
}

// CoversConstantRate compares the accumulated capacity of plan and
// demand at every step of the plan's sampling grid. A nil horizon
// falls back to the demand duration.
func CoversConstantRate(plan *Plan, demand *Demand, horizon *timeval.Value) (*Coverage, error) {
	if plan == nil || demand == nil {
		return nil, errors.Wrap(errors.InvalidArgument, "coverage needs a plan and a demand")
	}
	if horizon == nil {
		horizon = demand.Duration
		if horizon == nil {
			return nil, errors.Wrapf(errors.InvalidArgument, "demand %q has no duration, a horizon is required", demand.Name)
		}
	}
	points, err := plan.Model.Sample(*horizon)
	if err != nil {
		return nil, err
	}
	c := &Coverage{Covered: true, Horizon: *horizon}
	for _, p := range points {
		dc := demand.Model.CapacityAt(p.Time())
		if dc > p.Capacity {
			c.Covered = false
			c.At = p.Time().To(horizon.Unit())
			c.PlanCapacity = p.Capacity
			c.DemandCapacity = dc
			break
		}
	}
	return c, nil
}

// CompareHorizon returns a horizon long enough to show every window
// and active period of the plan and the demands.
func CompareHorizon(plan *Plan, demands ...*Demand) timeval.Value {
	longest := 0.0
	consider := func(m *capacity.Model) {
		longest = max(longest, m.CoarsestPeriod().Milliseconds())
		if active := m.MaxActiveTime(); active != nil {
			longest = max(longest, active.Milliseconds())
		}
	}
	if plan != nil {
		consider(plan.Model)
	}
	for _, d := range demands {
		if d != nil {
			consider(d.Model)
		}
	}
	return timeval.BestUnit(longest)
}

// schedule times come back from the output unit, allow for the
// float error of that round trip
const scheduleSlackMs = 1e-6

// SeriesPoint is one sample of the rescheduled comparison.
type SeriesPoint struct {
	Time        timeval.Value `json:"time" yaml:"time"`
	Plan        float64       `json:"plan" yaml:"plan"`
	Demand      float64       `json:"demand" yaml:"demand"`
	Rescheduled float64       `json:"rescheduled" yaml:"rescheduled"`
}

// Rescheduled pairs the fit report with the curves it produces.
type Rescheduled struct {
	Report *Report       `json:"report" yaml:"report"`
	Series []SeriesPoint `json:"series" yaml:"series"`
}

// Reschedule samples plan and demand on the plan grid up to horizon
// and adds the demand curve as it looks once backlogged requests are
// moved to their scheduled instants: it starts from the demand's grant
// at the origin and grows by one for every request already placed.
func Reschedule(plan *Plan, demand *Demand, horizon timeval.Value, unit timeval.Unit) (*Rescheduled, error) {
	report, err := Analyze(plan, demand, WithOutputUnit(unit))
	if err != nil {
		return nil, err
	}
	points, err := plan.Model.Sample(horizon)
	if err != nil {
		return nil, err
	}

	series := make([]SeriesPoint, 0, len(points))
	cum, next := 0.0, 0
	for _, p := range points {
		dc := demand.Model.CapacityAt(p.Time())
		if p.TimeMs == 0 {
			cum = dc
		}
		for next < len(report.Schedule) && report.Schedule[next].At.Milliseconds() <= p.TimeMs+scheduleSlackMs {
			cum++
			next++
		}
		series = append(series, SeriesPoint{
			Time:        p.Time().To(unit),
			Plan:        p.Capacity,
			Demand:      dc,
			Rescheduled: cum,
		})
	}
	return &Rescheduled{Report: report, Series: series}, nil
}
