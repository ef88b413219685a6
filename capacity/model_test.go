// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
)

func mustRate(t *testing.T, text string) rate.UnitaryRate {
	t.Helper()
	r, err := rate.ParseUnitary(text)
	require.NoError(t, err)
	return r
}

func mustQuota(t *testing.T, text string) rate.QuotaWindow {
	t.Helper()
	q, err := rate.ParseQuota(text)
	require.NoError(t, err)
	return q
}

func mustModel(t *testing.T, base string, quotas ...string) *Model {
	t.Helper()
	qs := make([]rate.QuotaWindow, 0, len(quotas))
	for _, q := range quotas {
		qs = append(qs, mustQuota(t, q))
	}
	m, rejected, err := NewModel(mustRate(t, base), WithQuotas(qs...))
	require.NoError(t, err)
	require.Empty(t, rejected)
	return m
}

func ms(v float64) timeval.Value {
	return timeval.Millis(v)
}

func TestNewModelValidation(t *testing.T) {
	_, _, err := NewModel(rate.UnitaryRate{})
	assert.True(t, errors.IsInvalidArgument(err))

	_, _, err = NewModel(mustRate(t, "10/1s"), WithMaxActiveTime(timeval.Zero))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestAdmission(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		quotas []string
		limits int
		reason string
	}{
		{
			name:   "quota beyond rate throughput",
			base:   "1/2s",
			quotas: []string{"5000/1h"},
			limits: 1,
			reason: ReasonExceedsThroughput,
		},
		{
			name:   "quota capped by a finer quota",
			base:   "10/1s",
			quotas: []string{"100/1min", "10000/1h"},
			limits: 2,
			reason: ReasonUnreachable,
		},
		{
			name:   "quota below the rate burst",
			base:   "10/1s",
			quotas: []string{"5/1min"},
			limits: 1,
			reason: ReasonBelowRateBurst,
		},
		{
			name:   "quota finer than the rate",
			base:   "10/1min",
			quotas: []string{"100/1s"},
			limits: 1,
			reason: ReasonPeriodNotCoarser,
		},
		{
			name:   "two quotas sharing a period",
			base:   "10/1s",
			quotas: []string{"1800/1h", "2000/1h"},
			limits: 2,
			reason: ReasonPeriodNotCoarser,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var qs []rate.QuotaWindow
			for _, q := range tt.quotas {
				qs = append(qs, mustQuota(t, q))
			}
			m, rejected, err := NewModel(mustRate(t, tt.base), WithQuotas(qs...))
			require.NoError(t, err)
			require.Len(t, rejected, 1)
			assert.Equal(t, tt.reason, rejected[0].Reason)
			assert.Len(t, m.Limits(), tt.limits)
			for _, l := range m.Limits() {
				assert.NotEqual(t, rejected[0].Quota.Units(), l.Units, "rejected quota must not be part of the limits")
			}
		})
	}
}

func TestAdmissionSortsByPeriod(t *testing.T) {
	m, rejected, err := NewModel(mustRate(t, "1/1s"),
		WithQuotas(mustQuota(t, "100/1h"), mustQuota(t, "50/1min")))
	require.NoError(t, err)
	require.Empty(t, rejected)

	limits := m.Limits()
	require.Len(t, limits, 3)
	assert.True(t, limits[0].Base)
	assert.Equal(t, 50.0, limits[1].Units)
	assert.Equal(t, 100.0, limits[2].Units)
	assert.Equal(t, "1h", m.CoarsestPeriod().String())
	assert.Equal(t, "1/1s, 50/1min, 100/1h", m.String())
}

func TestCapacityAt(t *testing.T) {
	t.Run("rate only", func(t *testing.T) {
		m := mustModel(t, "1/2s")
		assert.Equal(t, 6.0, m.CapacityAt(ms(10000)))
	})

	t.Run("hourly quota", func(t *testing.T) {
		m := mustModel(t, "10/1s", "1800/1h")
		tests := []struct {
			at   float64
			want float64
		}{
			{0, 10},
			{999, 10},
			{1000, 20},
			{178999, 1790},
			{179000, 1800},
			{3599999, 1800},
			{3600000, 1810},
			{7200000, 3610},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, m.CapacityAt(ms(tt.at)), "capacity at %vms", tt.at)
		}
		assert.Equal(t, 0.0, m.CapacityAt(ms(-1)))

		got, err := m.CapacityDuring(timeval.Zero, timeval.MustNew(1, timeval.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1800.0, got)

		_, err = m.CapacityDuring(ms(5), ms(1))
		assert.True(t, errors.IsInvalidArgument(err))
	})
}

func TestBaseCase(t *testing.T) {
	for _, m := range []*Model{
		mustModel(t, "1/2s"),
		mustModel(t, "10/1s", "1800/1h"),
		mustModel(t, "1/1s", "50/1min", "100/1h"),
	} {
		assert.Equal(t, m.Rate().Units(), m.CapacityAt(timeval.Zero), "model %s", m)
	}
}

func TestMonotonicity(t *testing.T) {
	for _, m := range []*Model{
		mustModel(t, "10/1s", "1800/1h"),
		mustModel(t, "1/1s", "50/1min", "100/1h"),
	} {
		prev := m.CapacityAt(timeval.Zero)
		for at := 0.0; at <= 3*3600000; at += 997 {
			c := m.CapacityAt(ms(at))
			require.GreaterOrEqual(t, c, prev, "model %s decreased at %vms", m, at)
			prev = c
		}
	}
}

func TestMinTime(t *testing.T) {
	m := mustModel(t, "10/1s", "1800/1h")

	v, err := m.MinTime(0)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = m.MinTime(10)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = m.MinTime(1800)
	require.NoError(t, err)
	assert.Equal(t, "179s", v.String())

	v, err = m.MinTime(1801, timeval.Hour)
	require.NoError(t, err)
	assert.Equal(t, "1h", v.String())

	_, err = m.MinTime(-1)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.MinTime(2.5)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestMinTimeRoundTrip(t *testing.T) {
	for _, m := range []*Model{
		mustModel(t, "1/2s"),
		mustModel(t, "10/1s", "1800/1h"),
		mustModel(t, "1/1s", "50/1min", "100/1h"),
	} {
		for goal := 1.0; goal <= 4000; goal++ {
			v, err := m.MinTime(goal)
			require.NoError(t, err)
			at := v.Milliseconds()
			require.GreaterOrEqual(t, m.CapacityAt(ms(at)), goal, "model %s goal %v at %s", m, goal, v)
			if at > 0 {
				require.Less(t, m.CapacityAt(ms(at-1)), goal, "model %s reached %v before %s", m, goal, v)
			}
		}
	}
}

func TestMinTimeRoundTripEquivalentRate(t *testing.T) {
	// 7/100ms accelerated by 3 grants every 42.857...ms
	fractional, err := rate.MustUnitaryRate(7, ms(100)).EquivalentRate(3)
	require.NoError(t, err)
	sevenths, err := rate.MustUnitaryRate(3, timeval.MustNew(7, timeval.Second)).EquivalentRate(2)
	require.NoError(t, err)

	plain, _, err := NewModel(fractional)
	require.NoError(t, err)
	tiered, rejected, err := NewModel(fractional, WithQuotas(mustQuota(t, "50/1s")))
	require.NoError(t, err)
	require.Empty(t, rejected)
	slow, _, err := NewModel(sevenths)
	require.NoError(t, err)

	v, err := plain.MinTime(22)
	require.NoError(t, err)
	assert.Equal(t, 300.0, v.Milliseconds())
	assert.Equal(t, 24.0, plain.CapacityAt(v))

	for _, m := range []*Model{plain, tiered, slow} {
		for goal := 1.0; goal <= 2000; goal++ {
			v, err := m.MinTime(goal)
			require.NoError(t, err)
			at := v.Milliseconds()
			require.GreaterOrEqual(t, m.CapacityAt(ms(at)), goal, "model %s goal %v at %s", m, goal, v)
			if at > 0 {
				require.Less(t, m.CapacityAt(ms(at-1)), goal, "model %s reached %v before %s", m, goal, v)
			}
		}
	}
}

func TestTierDominance(t *testing.T) {
	for _, m := range []*Model{
		mustModel(t, "10/1s", "1800/1h"),
		mustModel(t, "1/1s", "50/1min", "100/1h"),
	} {
		for _, q := range m.Quotas() {
			period := q.Period().Milliseconds()
			for start := 0.0; start <= 3*3600000; start += 7001 {
				got, err := m.CapacityDuring(ms(start), ms(start+period))
				require.NoError(t, err)
				require.LessOrEqual(t, got, q.Units(), "model %s exceeded %s from %vms", m, q, start)
			}
		}
	}
}

func TestMaxActiveTime(t *testing.T) {
	base := mustRate(t, "10/1s")
	m, _, err := NewModel(base,
		WithQuotas(mustQuota(t, "1800/1h")),
		WithMaxActiveTime(timeval.MustNew(30, timeval.Minute)))
	require.NoError(t, err)

	require.NotNil(t, m.MaxActiveTime())
	assert.Equal(t, "30min", m.MaxActiveTime().String())
	assert.Equal(t, m.CapacityAt(timeval.MustNew(30, timeval.Minute)), m.CapacityAt(timeval.MustNew(2, timeval.Hour)))

	_, err = m.MinTime(1801)
	assert.True(t, errors.IsOutOfRange(err))

	v, err := m.MinTime(100)
	require.NoError(t, err)
	assert.Equal(t, "9s", v.String())
}

func TestExhaustionThresholds(t *testing.T) {
	// a single grant every two seconds fills 1800 at 1799 grants past the origin
	m := mustModel(t, "1/2s", "1800/1h")
	thresholds := m.ExhaustionThresholds()
	require.Len(t, thresholds, 1)
	assert.Equal(t, 1799*2000.0, thresholds[0].Milliseconds())

	layered := mustModel(t, "1/1s", "50/1min", "100/1h")
	thresholds = layered.ExhaustionThresholds()
	require.Len(t, thresholds, 2)
	assert.Equal(t, 49000.0, thresholds[0].Milliseconds())
	assert.Equal(t, 109000.0, thresholds[1].Milliseconds())

	assert.Empty(t, mustModel(t, "1/1s").ExhaustionThresholds())
}

func TestReduceRate(t *testing.T) {
	m := mustModel(t, "10/1s", "1800/1h")

	slowest, rejected, err := m.ReduceRate(0)
	require.NoError(t, err)
	require.Empty(t, rejected)
	assert.Equal(t, "1/2s", slowest.Rate().String())
	assert.Len(t, slowest.Quotas(), 1)

	half, _, err := m.ReduceRate(50)
	require.NoError(t, err)
	assert.InDelta(t, 1050, half.Rate().Interval(), 1e-9)

	same, _, err := m.ReduceRate(100)
	require.NoError(t, err)
	assert.Same(t, m, same)

	_, _, err = m.ReduceRate(120)
	assert.True(t, errors.IsInvalidArgument(err))
	_, _, err = mustModel(t, "10/1s").ReduceRate(10)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestWithBaseRate(t *testing.T) {
	m := mustModel(t, "10/1s", "1800/1h")

	slower, rejected, err := m.WithBaseRate(mustRate(t, "1/1min"))
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonExceedsThroughput, rejected[0].Reason)
	assert.Empty(t, slower.Quotas())

	faster, rejected, err := m.WithBaseRate(mustRate(t, "20/1s"))
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, 20.0, faster.CapacityAt(timeval.Zero))
}
