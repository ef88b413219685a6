// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package fit

import (
	"github.com/google/uuid"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
)

// Demand is the consuming side of a comparison. A demand with a
// duration stops issuing requests once it elapses.
type Demand struct {
	ID       uuid.UUID       `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Model    *capacity.Model `json:"-" yaml:"-"`
	Duration *timeval.Value  `json:"duration,omitempty" yaml:"duration,omitempty"`

	rate   rate.UnitaryRate
	quotas []rate.QuotaWindow
}

// NewDemand builds a demand issuing requests at r, optionally bounded
// by quotas and active for duration when it is not nil.
func NewDemand(name string, r rate.UnitaryRate, duration *timeval.Value, quotas ...rate.QuotaWindow) (*Demand, []capacity.Rejection, error) {
	opts := []capacity.Option{capacity.WithQuotas(quotas...)}
	if duration != nil {
		opts = append(opts, capacity.WithMaxActiveTime(*duration))
	}
	model, rejected, err := capacity.NewModel(r, opts...)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.GetErrCode(err), "demand %q: %s", name, err)
	}
	return &Demand{
		ID:       uuid.New(),
		Name:     name,
		Model:    model,
		Duration: model.MaxActiveTime(),
		rate:     r,
		quotas:   quotas,
	}, rejected, nil
}

// MultiplyBy returns the demand of n identical consumers, scaling the
// rate and every quota by n.
func (d *Demand) MultiplyBy(n int) (*Demand, []capacity.Rejection, error) {
	if n <= 0 {
		return nil, nil, errors.Wrapf(errors.InvalidArgument, "number of consumers must be positive, got %d", n)
	}
	k := float64(n)
	r, err := rate.NewUnitaryRate(d.rate.Units()*k, d.rate.Period())
	if err != nil {
		return nil, nil, err
	}
	quotas := make([]rate.QuotaWindow, 0, len(d.quotas))
	for _, q := range d.quotas {
		scaled, err := rate.NewQuotaWindow(q.Units()*k, q.Period())
		if err != nil {
			return nil, nil, err
		}
		quotas = append(quotas, scaled)
	}
	return NewDemand(d.Name, r, d.Duration, quotas...)
}
