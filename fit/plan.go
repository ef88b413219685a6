// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package fit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/timeval"
)

// DefaultBillingPeriod applies to plans that do not set one.
var DefaultBillingPeriod = timeval.MustNew(1, timeval.Month)

// Plan is the supply side of a comparison, a capacity model sold at
// a price per billing period.
type Plan struct {
	ID               uuid.UUID       `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Model            *capacity.Model `json:"-" yaml:"-"`
	Cost             decimal.Decimal `json:"cost" yaml:"cost"`
	OverageCost      decimal.Decimal `json:"overage_cost" yaml:"overage_cost"`
	MaxSubscriptions int             `json:"max_subscriptions" yaml:"max_subscriptions"`
	BillingPeriod    timeval.Value   `json:"billing_period" yaml:"billing_period"`
}

// PlanOption customises a Plan at construction.
type PlanOption func(*Plan)

// WithCost sets the price per billing period and per extra request.
func WithCost(cost, overage decimal.Decimal) PlanOption {
	return func(p *Plan) {
		p.Cost = cost
		p.OverageCost = overage
	}
}

// WithMaxSubscriptions sets how many subscriptions a customer may hold.
func WithMaxSubscriptions(n int) PlanOption {
	return func(p *Plan) {
		p.MaxSubscriptions = n
	}
}

// WithBillingPeriod sets the billing period of the plan.
func WithBillingPeriod(period timeval.Value) PlanOption {
	return func(p *Plan) {
		p.BillingPeriod = period
	}
}

// NewPlan builds a plan around model.
func NewPlan(name string, model *capacity.Model, opts ...PlanOption) (*Plan, error) {
	if model == nil {
		return nil, errors.Wrapf(errors.InvalidArgument, "plan %q has no capacity model", name)
	}
	p := &Plan{
		ID:               uuid.New(),
		Name:             name,
		Model:            model,
		Cost:             decimal.Zero,
		OverageCost:      decimal.Zero,
		MaxSubscriptions: 1,
		BillingPeriod:    DefaultBillingPeriod,
	}
	for _, opt := range opts {
		opt(p)
	}
	switch {
	case p.Cost.IsNegative() || p.OverageCost.IsNegative():
		return nil, errors.Wrapf(errors.InvalidArgument, "plan %q has a negative cost", name)
	case p.MaxSubscriptions <= 0:
		return nil, errors.Wrapf(errors.InvalidArgument, "plan %q needs at least one subscription, got %d", name, p.MaxSubscriptions)
	case p.BillingPeriod.Milliseconds() <= 0:
		return nil, errors.Wrapf(errors.InvalidArgument, "plan %q billing period must be positive", name)
	}
	return p, nil
}

// MaxIncludedQuota returns the requests available within one billing
// period, excluding the grant that renews exactly at its end.
func (p *Plan) MaxIncludedQuota() float64 {
	return p.Model.CapacityAt(timeval.Millis(p.BillingPeriod.Milliseconds() - 1))
}

// UnitCost is the price of one included request.
func (p *Plan) UnitCost() decimal.Decimal {
	included := p.MaxIncludedQuota()
	if included <= 0 {
		return decimal.Zero
	}
	return p.Cost.Div(decimal.NewFromFloat(included))
}

// CostFor returns the bill for requests issued within one billing
// period, charging overage beyond the included quota.
func (p *Plan) CostFor(requests float64) decimal.Decimal {
	extra := requests - p.MaxIncludedQuota()
	if extra <= 0 {
		return p.Cost
	}
	return p.Cost.Add(p.OverageCost.Mul(decimal.NewFromFloat(extra)))
}
