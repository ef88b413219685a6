// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package fit

import (
	"math"

	"github.com/google/uuid"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/values"
)

// reasons a demand cannot be served by a plan
const (
	ReasonInstantaneousRateExceeded = "instantaneous_rate_exceeded"
	ReasonQuotaExceeded             = "quota_exceeded"
)

// ids of rescheduled requests start here, the first request of the
// demand is always served at the origin
const firstScheduledID = 2

// QuotaViolation describes the first demand quota found to need more
// than a plan quota allows, both expressed over ComparedWindow.
type QuotaViolation struct {
	PlanQuota      rate.QuotaWindow `json:"plan_quota" yaml:"plan_quota"`
	DemandQuota    rate.QuotaWindow `json:"demand_quota" yaml:"demand_quota"`
	ComparedWindow timeval.Value    `json:"compared_window" yaml:"compared_window"`
	DemandUnits    float64          `json:"demand_units" yaml:"demand_units"`
	AllowedUnits   float64          `json:"allowed_units" yaml:"allowed_units"`
}

// ScheduledRequest places one backlogged request.
type ScheduledRequest struct {
	ID int           `json:"id" yaml:"id"`
	At timeval.Value `json:"at" yaml:"at"`
}

// Report is the outcome of fitting a demand into a plan. An
// infeasible demand is a normal result carrying a Reason.
type Report struct {
	PlanID      uuid.UUID        `json:"plan_id" yaml:"plan_id"`
	DemandID    uuid.UUID        `json:"demand_id" yaml:"demand_id"`
	Feasible    bool             `json:"feasible" yaml:"feasible"`
	Reason      string           `json:"reason,omitempty" yaml:"reason,omitempty"`
	PlanRate    rate.UnitaryRate `json:"plan_rate" yaml:"plan_rate"`
	DemandRate  rate.UnitaryRate `json:"demand_rate" yaml:"demand_rate"`
	PlanSpeed   float64          `json:"plan_speed" yaml:"plan_speed"`
	DemandSpeed float64          `json:"demand_speed" yaml:"demand_speed"`
	Violation   *QuotaViolation  `json:"violation,omitempty" yaml:"violation,omitempty"`

	MaxBacklog float64            `json:"max_backlog" yaml:"max_backlog"`
	PeakAt     timeval.Value      `json:"peak_at" yaml:"peak_at"`
	DrainTime  timeval.Value      `json:"drain_time" yaml:"drain_time"`
	Schedule   []ScheduledRequest `json:"schedule" yaml:"schedule"`
	ResumeRate rate.UnitaryRate   `json:"resume_rate" yaml:"resume_rate"`
	ResumeIn   timeval.Value      `json:"resume_in" yaml:"resume_in"`
}

// AnalyzeOption customises an analysis.
type AnalyzeOption func(*analyzeOptions)

type analyzeOptions struct {
	unit timeval.Unit
}

// WithOutputUnit expresses every time of the report in unit.
func WithOutputUnit(unit timeval.Unit) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.unit = unit
	}
}

// Analyze checks whether plan can serve demand. The base rates are
// compared first, then every pair of quotas over a common window, and
// finally both curves are walked on the plan's base period grid up to
// the larger coarsest window. Any backlog found is drained at the plan
// speed starting from the instant it peaks.
func Analyze(plan *Plan, demand *Demand, opts ...AnalyzeOption) (*Report, error) {
	if plan == nil || plan.Model == nil {
		return nil, errors.Wrap(errors.InvalidArgument, "analysis needs a plan")
	}
	if demand == nil || demand.Model == nil {
		return nil, errors.Wrap(errors.InvalidArgument, "analysis needs a demand")
	}
	o := &analyzeOptions{unit: values.GetOutputUnit()}
	for _, opt := range opts {
		opt(o)
	}
	if !o.unit.Valid() {
		return nil, errors.Wrapf(errors.InvalidArgument, "invalid output unit %d", int(o.unit))
	}
	in := func(ms float64) timeval.Value {
		return timeval.Millis(ms).To(o.unit)
	}

	planRate, demandRate := plan.Model.Rate(), demand.Model.Rate()
	r := &Report{
		PlanID:      plan.ID,
		DemandID:    demand.ID,
		PlanRate:    planRate,
		DemandRate:  demandRate,
		PlanSpeed:   planRate.Speed(),
		DemandSpeed: demandRate.Speed(),
		PeakAt:      in(0),
		DrainTime:   in(0),
		ResumeRate:  planRate,
		ResumeIn:    in(0),
		Schedule:    []ScheduledRequest{},
	}

	if r.DemandSpeed > r.PlanSpeed {
		r.Reason = ReasonInstantaneousRateExceeded
		return r, nil
	}

	if v := quotaViolation(plan, demand); v != nil {
		r.Reason = ReasonQuotaExceeded
		r.Violation = v
		return r, nil
	}
	r.Feasible = true

	maxBacklog, peakMs, err := peakBacklog(plan, demand)
	if err != nil {
		return nil, err
	}
	if maxBacklog <= 0 {
		return r, nil
	}
	r.MaxBacklog = maxBacklog
	r.PeakAt = in(peakMs)

	drainMs := maxBacklog / r.PlanSpeed
	r.DrainTime = in(drainMs)

	if maxBacklog > capacity.MaxSamples {
		return nil, errors.Wrapf(errors.OutOfRange,
			"backlog of %v requests exceeds the schedule limit of %d", maxBacklog, capacity.MaxSamples)
	}
	pacer, err := rate.NewPacer(r.PlanSpeed)
	if err != nil {
		return nil, err
	}
	count := int(math.Floor(maxBacklog))
	r.Schedule = make([]ScheduledRequest, 0, count)
	for i, offset := range pacer.Offsets(count) {
		r.Schedule = append(r.Schedule, ScheduledRequest{
			ID: firstScheduledID + i,
			At: in(peakMs + offset),
		})
	}

	// demand resumes at its own next period boundary once drained
	dp := demandRate.Period().Milliseconds()
	remaining := dp - math.Mod(drainMs, dp)
	if remaining >= dp {
		remaining = 0
	}
	r.ResumeIn = in(remaining)
	return r, nil
}

func quotaViolation(plan *Plan, demand *Demand) *QuotaViolation {
	for _, dq := range demand.Model.Quotas() {
		for _, pq := range plan.Model.Quotas() {
			v := &QuotaViolation{PlanQuota: pq, DemandQuota: dq}
			if dq.Period().Milliseconds() >= pq.Period().Milliseconds() {
				v.ComparedWindow = pq.Period()
				v.DemandUnits = dq.ScaledTo(pq.Period()).Units()
				v.AllowedUnits = pq.Units()
			} else {
				v.ComparedWindow = dq.Period()
				v.DemandUnits = dq.Units()
				v.AllowedUnits = pq.ScaledTo(dq.Period()).Units()
			}
			if v.DemandUnits > v.AllowedUnits {
				return v
			}
		}
	}
	return nil
}

// peakBacklog walks both curves and returns the largest excess of
// demand over supply with the first instant it is reached. The walk
// is bounded like model sampling.
func peakBacklog(plan *Plan, demand *Demand) (float64, float64, error) {
	horizon := max(plan.Model.CoarsestPeriod().Milliseconds(), demand.Model.CoarsestPeriod().Milliseconds())
	step := plan.Model.Rate().Period().Milliseconds()
	if count := math.Floor(horizon/step) + 1; count > capacity.MaxSamples {
		return 0, 0, errors.Wrapf(errors.OutOfRange,
			"backlog horizon %s needs %v samples at %s, limit is %d",
			timeval.BestUnit(horizon), count, plan.Model.Rate().Period(), capacity.MaxSamples)
	}

	var maxBacklog, peakMs float64
	visit := func(t float64) {
		backlog := demand.Model.CapacityAt(timeval.Millis(t)) - plan.Model.CapacityAt(timeval.Millis(t))
		if backlog > maxBacklog {
			maxBacklog, peakMs = backlog, t
		}
	}
	last := 0.0
	for i := 0.0; i*step <= horizon; i++ {
		last = i * step
		visit(last)
	}
	if last < horizon {
		visit(horizon)
	}
	return maxBacklog, peakMs, nil
}
