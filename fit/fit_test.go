// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package fit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/utils"
)

func quotas(t *testing.T, texts ...string) []rate.QuotaWindow {
	t.Helper()
	out := make([]rate.QuotaWindow, 0, len(texts))
	for _, text := range texts {
		q, err := rate.ParseQuota(text)
		require.NoError(t, err)
		out = append(out, q)
	}
	return out
}

func newPlan(t *testing.T, base string, qs ...string) *Plan {
	t.Helper()
	r, err := rate.ParseUnitary(base)
	require.NoError(t, err)
	m, rejected, err := capacity.NewModel(r, capacity.WithQuotas(quotas(t, qs...)...))
	require.NoError(t, err)
	require.Empty(t, rejected)
	p, err := NewPlan("plan", m)
	require.NoError(t, err)
	return p
}

func newDemand(t *testing.T, base string, duration *timeval.Value, qs ...string) *Demand {
	t.Helper()
	r, err := rate.ParseUnitary(base)
	require.NoError(t, err)
	d, rejected, err := NewDemand("demand", r, duration, quotas(t, qs...)...)
	require.NoError(t, err)
	require.Empty(t, rejected)
	return d
}

func TestAnalyzeInstantaneousRate(t *testing.T) {
	plan := newPlan(t, "10/1s")
	demand := newDemand(t, "20/1s", nil)

	r, err := Analyze(plan, demand)
	require.NoError(t, err)
	assert.False(t, r.Feasible)
	assert.Equal(t, ReasonInstantaneousRateExceeded, r.Reason)
	assert.Equal(t, 0.01, r.PlanSpeed)
	assert.Equal(t, 0.02, r.DemandSpeed)
	assert.Equal(t, plan.ID, r.PlanID)
	assert.Equal(t, demand.ID, r.DemandID)
	assert.Empty(t, r.Schedule)
}

func TestAnalyzeQuotaExceeded(t *testing.T) {
	t.Run("same window", func(t *testing.T) {
		plan := newPlan(t, "10/1s", "1800/1h")
		demand := newDemand(t, "5/1s", nil, "3000/1h")

		r, err := Analyze(plan, demand)
		require.NoError(t, err)
		assert.False(t, r.Feasible)
		assert.Equal(t, ReasonQuotaExceeded, r.Reason)
		require.NotNil(t, r.Violation)
		assert.Equal(t, "1800/1h", r.Violation.PlanQuota.String())
		assert.Equal(t, "3000/1h", r.Violation.DemandQuota.String())
		assert.Equal(t, "1h", r.Violation.ComparedWindow.String())
		assert.Equal(t, 3000.0, r.Violation.DemandUnits)
		assert.Equal(t, 1800.0, r.Violation.AllowedUnits)
	})

	t.Run("demand window finer", func(t *testing.T) {
		plan := newPlan(t, "10/1s", "100/1h")
		demand := newDemand(t, "1/1s", nil, "50/1min")

		r, err := Analyze(plan, demand)
		require.NoError(t, err)
		assert.Equal(t, ReasonQuotaExceeded, r.Reason)
		require.NotNil(t, r.Violation)
		assert.Equal(t, "1min", r.Violation.ComparedWindow.String())
		assert.Equal(t, 50.0, r.Violation.DemandUnits)
		assert.InDelta(t, 100.0/60, r.Violation.AllowedUnits, 1e-9)
	})
}

func TestAnalyzeFeasibleWithoutBacklog(t *testing.T) {
	plan := newPlan(t, "10/1s", "1800/1h")
	demand := newDemand(t, "1/1s", nil, "100/1h")

	r, err := Analyze(plan, demand)
	require.NoError(t, err)
	assert.True(t, r.Feasible)
	assert.Empty(t, r.Reason)
	assert.Nil(t, r.Violation)
	assert.Zero(t, r.MaxBacklog)
	assert.Empty(t, r.Schedule)
	assert.True(t, r.ResumeIn.IsZero())
}

func TestAnalyzeBacklog(t *testing.T) {
	plan := newPlan(t, "1/1s")
	demand := newDemand(t, "5/5s", nil)

	r, err := Analyze(plan, demand, WithOutputUnit(timeval.Second))
	require.NoError(t, err)
	assert.True(t, r.Feasible)
	assert.Equal(t, 4.0, r.MaxBacklog)
	assert.Equal(t, "0s", r.PeakAt.String())
	assert.Equal(t, "4s", r.DrainTime.String())
	assert.Equal(t, "1s", r.ResumeIn.String())
	assert.Equal(t, "1/1s", r.ResumeRate.String())

	require.Len(t, r.Schedule, 4)
	for i, s := range r.Schedule {
		assert.Equal(t, i+2, s.ID)
		assert.InDelta(t, float64(i+1), s.At.Magnitude(), 1e-9)
		assert.Equal(t, timeval.Second, s.At.Unit())
	}

	ms, err := Analyze(plan, demand, WithOutputUnit(timeval.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "4000ms", ms.DrainTime.String())
}

func TestAnalyzeBounded(t *testing.T) {
	t.Run("backlog grid", func(t *testing.T) {
		plan := newPlan(t, "1/1ms", "1000000/1month")
		demand := newDemand(t, "1/1s", nil)

		_, err := Analyze(plan, demand)
		assert.True(t, errors.IsOutOfRange(err), "unexpected error %v", err)
	})

	t.Run("schedule length", func(t *testing.T) {
		plan := newPlan(t, "10/10s")
		demand := newDemand(t, "2000000/1month", nil)

		_, err := Analyze(plan, demand)
		assert.True(t, errors.IsOutOfRange(err), "unexpected error %v", err)
	})
}

func TestAnalyzeInvalidInput(t *testing.T) {
	plan := newPlan(t, "1/1s")
	demand := newDemand(t, "1/1s", nil)

	_, err := Analyze(nil, demand)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = Analyze(plan, nil)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = Analyze(plan, demand, WithOutputUnit(timeval.Unit(42)))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestCoversConstantRate(t *testing.T) {
	plan := newPlan(t, "10/1s", "1800/1h")

	t.Run("covered", func(t *testing.T) {
		demand := newDemand(t, "5/1s", utils.Pointer(timeval.MustNew(1, timeval.Minute)))
		c, err := CoversConstantRate(plan, demand, nil)
		require.NoError(t, err)
		assert.True(t, c.Covered)
		assert.Equal(t, "1min", c.Horizon.String())
	})

	t.Run("not covered", func(t *testing.T) {
		demand := newDemand(t, "1/1s", nil)
		c, err := CoversConstantRate(plan, demand, utils.Pointer(timeval.MustNew(2, timeval.Hour)))
		require.NoError(t, err)
		assert.False(t, c.Covered)
		assert.Equal(t, "0.5h", c.At.String())
		assert.Equal(t, 1800.0, c.PlanCapacity)
		assert.Equal(t, 1801.0, c.DemandCapacity)
	})

	t.Run("no horizon", func(t *testing.T) {
		_, err := CoversConstantRate(plan, newDemand(t, "1/1s", nil), nil)
		assert.True(t, errors.IsInvalidArgument(err))
	})
}

func TestCompareHorizon(t *testing.T) {
	plan := newPlan(t, "10/1s", "1800/1h")
	assert.Equal(t, "1h", CompareHorizon(plan).String())

	long := newDemand(t, "1/1s", utils.Pointer(timeval.MustNew(2, timeval.Hour)))
	short := newDemand(t, "1/1s", nil, "50/1min")
	assert.Equal(t, "2h", CompareHorizon(plan, short, long).String())
}

func TestReschedule(t *testing.T) {
	plan := newPlan(t, "1/1s")
	demand := newDemand(t, "5/5s", nil)

	out, err := Reschedule(plan, demand, timeval.MustNew(6, timeval.Second), timeval.Second)
	require.NoError(t, err)
	require.NotNil(t, out.Report)
	require.Len(t, out.Series, 7)

	wantPlan := []float64{1, 2, 3, 4, 5, 6, 7}
	wantDemand := []float64{5, 5, 5, 5, 5, 10, 10}
	wantRescheduled := []float64{5, 6, 7, 8, 9, 9, 9}
	for i, p := range out.Series {
		assert.Equal(t, float64(i), p.Time.Magnitude())
		assert.Equal(t, wantPlan[i], p.Plan, "plan at %s", p.Time)
		assert.Equal(t, wantDemand[i], p.Demand, "demand at %s", p.Time)
		assert.Equal(t, wantRescheduled[i], p.Rescheduled, "rescheduled at %s", p.Time)
	}
}

func TestPlanCost(t *testing.T) {
	r, err := rate.ParseUnitary("1/1s")
	require.NoError(t, err)
	m, _, err := capacity.NewModel(r)
	require.NoError(t, err)

	p, err := NewPlan("basic", m,
		WithCost(decimal.RequireFromString("6"), decimal.RequireFromString("0.01")),
		WithBillingPeriod(timeval.MustNew(1, timeval.Minute)))
	require.NoError(t, err)
	assert.Equal(t, 1, p.MaxSubscriptions)
	assert.Equal(t, 60.0, p.MaxIncludedQuota())
	assert.True(t, decimal.RequireFromString("0.1").Equal(p.UnitCost()), "unit cost %s", p.UnitCost())
	assert.True(t, decimal.RequireFromString("6").Equal(p.CostFor(50)))
	assert.True(t, decimal.RequireFromString("6.1").Equal(p.CostFor(70)), "cost %s", p.CostFor(70))

	def, err := NewPlan("default", m)
	require.NoError(t, err)
	assert.Equal(t, "1month", def.BillingPeriod.String())
	assert.True(t, def.UnitCost().IsZero())
}

func TestNewPlanValidation(t *testing.T) {
	r, err := rate.ParseUnitary("1/1s")
	require.NoError(t, err)
	m, _, err := capacity.NewModel(r)
	require.NoError(t, err)

	_, err = NewPlan("nil", nil)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewPlan("negative", m, WithCost(decimal.NewFromInt(-1), decimal.Zero))
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewPlan("nobody", m, WithMaxSubscriptions(0))
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = NewPlan("instant", m, WithBillingPeriod(timeval.Zero))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestDemandMultiplyBy(t *testing.T) {
	d := newDemand(t, "1/1s", utils.Pointer(timeval.MustNew(10, timeval.Minute)), "50/1min")

	triple, rejected, err := d.MultiplyBy(3)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, "3/1s", triple.Model.Rate().String())
	require.Len(t, triple.Model.Quotas(), 1)
	assert.Equal(t, "150/1min", triple.Model.Quotas()[0].String())
	require.NotNil(t, triple.Duration)
	assert.Equal(t, "10min", triple.Duration.String())
	assert.NotEqual(t, d.ID, triple.ID)

	_, _, err = d.MultiplyBy(0)
	assert.True(t, errors.IsInvalidArgument(err))
}
