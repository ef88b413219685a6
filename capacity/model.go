// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/utils"
	"github.com/go-core-stack/capacity/values"
)

// reasons a quota is left out of a model
const (
	ReasonPeriodNotCoarser  = "period_not_coarser"
	ReasonBelowRateBurst    = "below_rate_burst"
	ReasonExceedsThroughput = "exceeds_rate_throughput"
	ReasonUnreachable       = "unreachable"
)

var logger = hclog.New(&hclog.LoggerOptions{
	Name:  "capacity",
	Level: hclog.Warn,
})

// SetLogger replaces the package logger.
func SetLogger(l hclog.Logger) {
	logger = l
}

// Rejection records a quota dropped while building a model.
type Rejection struct {
	Quota  rate.QuotaWindow `json:"quota" yaml:"quota"`
	Reason string           `json:"reason" yaml:"reason"`
}

func (r Rejection) String() string {
	return r.Quota.String() + ": " + r.Reason
}

// Limit is the exported view of one tier of a model.
type Limit struct {
	Units  float64       `json:"units" yaml:"units"`
	Period timeval.Value `json:"period" yaml:"period"`
	Base   bool          `json:"base,omitempty" yaml:"base,omitempty"`
}

// Option customises a Model at construction.
type Option func(*options)

type options struct {
	quotas    []rate.QuotaWindow
	maxActive *timeval.Value
	workers   int
}

// WithQuotas layers quota windows over the base rate. Quotas are
// admitted finest period first regardless of the order given.
func WithQuotas(quotas ...rate.QuotaWindow) Option {
	return func(o *options) {
		o.quotas = append(o.quotas, quotas...)
	}
}

// WithMaxActiveTime caps every time query of the model at active.
func WithMaxActiveTime(active timeval.Value) Option {
	return func(o *options) {
		o.maxActive = utils.Pointer(active)
	}
}

// WithSampleWorkers bounds the parallelism of curve sampling,
// overriding the configured default.
func WithSampleWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Model is a base rate with zero or more quota tiers stacked above
// it, finest to coarsest. It is immutable once built and safe for
// concurrent queries.
type Model struct {
	rate      rate.UnitaryRate
	requested []rate.QuotaWindow
	quotas    []rate.QuotaWindow
	limits    stack
	maxActive *timeval.Value
	workers   int
}

// NewModel validates the base rate and admits every quota the stack
// below it can fill within the quota's own period. Quotas that can
// never be reached are returned as rejections and logged, the model
// is still built without them.
func NewModel(base rate.UnitaryRate, opts ...Option) (*Model, []Rejection, error) {
	if base.Units() <= 0 || base.Period().Milliseconds() <= 0 {
		return nil, nil, errors.Wrapf(errors.InvalidArgument, "base rate %s is not valid", base)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxActive != nil && o.maxActive.Milliseconds() <= 0 {
		return nil, nil, errors.Wrapf(errors.InvalidArgument, "max active time must be positive, got %s", *o.maxActive)
	}
	if o.workers <= 0 {
		o.workers = values.GetSampleWorkers()
	}

	limits, admitted, rejected := admit(base, o.quotas)
	for _, r := range rejected {
		logger.Warn("quota omitted from model", "rate", base.String(), "quota", r.Quota.String(), "reason", r.Reason)
	}

	m := &Model{
		rate:      base,
		requested: slices.Clone(o.quotas),
		quotas:    admitted,
		limits:    limits,
		maxActive: o.maxActive,
		workers:   o.workers,
	}
	return m, rejected, nil
}

func admit(base rate.UnitaryRate, quotas []rate.QuotaWindow) (stack, []rate.QuotaWindow, []Rejection) {
	sorted := slices.Clone(quotas)
	slices.SortStableFunc(sorted, func(a, b rate.QuotaWindow) int {
		return cmp.Compare(a.Period().Milliseconds(), b.Period().Milliseconds())
	})

	limits := stack{{base: true, units: base.Units(), periodMs: base.Period().Milliseconds()}}
	var admitted []rate.QuotaWindow
	var rejected []Rejection
	for _, q := range sorted {
		periodMs := q.Period().Milliseconds()
		reason := ""
		switch {
		case periodMs <= limits[len(limits)-1].periodMs:
			reason = ReasonPeriodNotCoarser
		case q.Units() <= base.Units():
			// the grant at t=0 would already exceed the quota
			reason = ReasonBelowRateBurst
		case q.Units() > base.Units()*periodMs/base.Period().Milliseconds():
			reason = ReasonExceedsThroughput
		case limits.capacity(periodMs, len(limits)-1) < q.Units():
			reason = ReasonUnreachable
		}
		if reason != "" {
			rejected = append(rejected, Rejection{Quota: q, Reason: reason})
			continue
		}
		limits = append(limits, tier{units: q.Units(), periodMs: periodMs})
		admitted = append(admitted, q)
	}
	return limits, admitted, rejected
}

// Rate returns the base rate of the model.
func (m *Model) Rate() rate.UnitaryRate {
	return m.rate
}

// Quotas returns the admitted quotas, finest first.
func (m *Model) Quotas() []rate.QuotaWindow {
	return slices.Clone(m.quotas)
}

// Limits returns every tier of the model starting with the base rate.
func (m *Model) Limits() []Limit {
	out := make([]Limit, 0, len(m.limits))
	out = append(out, Limit{Units: m.rate.Units(), Period: m.rate.Period(), Base: true})
	for _, q := range m.quotas {
		out = append(out, Limit{Units: q.Units(), Period: q.Period()})
	}
	return out
}

// MaxActiveTime returns the active time ceiling, nil when unbounded.
func (m *Model) MaxActiveTime() *timeval.Value {
	if m.maxActive == nil {
		return nil
	}
	return utils.Pointer(*m.maxActive)
}

// CoarsestPeriod returns the period of the coarsest tier.
func (m *Model) CoarsestPeriod() timeval.Value {
	if len(m.quotas) == 0 {
		return m.rate.Period()
	}
	return m.quotas[len(m.quotas)-1].Period()
}

func (m *Model) String() string {
	parts := make([]string, 0, len(m.limits))
	parts = append(parts, m.rate.String())
	for _, q := range m.quotas {
		parts = append(parts, q.String())
	}
	return strings.Join(parts, ", ")
}

func (m *Model) top() int {
	return len(m.limits) - 1
}

// effective clamps a time in milliseconds to the active ceiling.
func (m *Model) effective(ms float64) float64 {
	if m.maxActive != nil {
		return min(ms, m.maxActive.Milliseconds())
	}
	return ms
}

func (m *Model) derive(base rate.UnitaryRate) (*Model, []Rejection, error) {
	opts := []Option{WithQuotas(m.requested...), WithSampleWorkers(m.workers)}
	if m.maxActive != nil {
		opts = append(opts, WithMaxActiveTime(*m.maxActive))
	}
	return NewModel(base, opts...)
}
