// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package scenario

import (
	"bytes"
	"io"
	"os"
	"slices"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/fit"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/utils"
)

var logger = hclog.New(&hclog.LoggerOptions{
	Name:  "scenario",
	Level: hclog.Warn,
})

// SetLogger replaces the package logger.
func SetLogger(l hclog.Logger) {
	logger = l
}

// PlanEntry is the file form of a plan.
type PlanEntry struct {
	Name             string             `yaml:"name"`
	Rate             rate.UnitaryRate   `yaml:"rate"`
	Quotas           []rate.QuotaWindow `yaml:"quotas,omitempty"`
	MaxActive        *timeval.Value     `yaml:"max_active,omitempty"`
	Cost             decimal.Decimal    `yaml:"cost,omitempty"`
	OverageCost      decimal.Decimal    `yaml:"overage_cost,omitempty"`
	MaxSubscriptions int                `yaml:"max_subscriptions,omitempty"`
	BillingPeriod    *timeval.Value     `yaml:"billing_period,omitempty"`
}

// DemandEntry is the file form of a demand. Users above one multiply
// the demand into that many identical consumers.
type DemandEntry struct {
	Name     string             `yaml:"name"`
	Rate     rate.UnitaryRate   `yaml:"rate"`
	Quotas   []rate.QuotaWindow `yaml:"quotas,omitempty"`
	Duration *timeval.Value     `yaml:"duration,omitempty"`
	Users    int                `yaml:"users,omitempty"`
}

type document struct {
	Plans   []PlanEntry   `yaml:"plans"`
	Demands []DemandEntry `yaml:"demands"`
}

// Rejection is a quota dropped from a named plan or demand.
type Rejection struct {
	Owner  string           `json:"owner" yaml:"owner"`
	Quota  rate.QuotaWindow `json:"quota" yaml:"quota"`
	Reason string           `json:"reason" yaml:"reason"`
}

// Scenario holds the plans and demands of one file in file order.
type Scenario struct {
	Plans      []*fit.Plan
	Demands    []*fit.Demand
	Rejections []Rejection
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.NotFound, "scenario file %s does not exist", path)
		}
		return nil, errors.Wrapf(errors.Unknown, "failed to read scenario %s: %s", path, err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	logger.Info("loaded scenario", "path", path, "plans", len(s.Plans), "demands", len(s.Demands))
	return s, nil
}

// Decode parses a scenario document and builds every plan and demand
// in it. Names must be unique within each section.
func Decode(r io.Reader) (*Scenario, error) {
	doc := &document{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && err != io.EOF {
		return nil, errors.Wrapf(errors.InvalidArgument, "invalid scenario: %s", err)
	}

	s := &Scenario{}
	for _, entry := range doc.Plans {
		if err := validName("plan", entry.Name); err != nil {
			return nil, err
		}
		if _, err := s.Plan(entry.Name); err == nil {
			return nil, errors.Wrapf(errors.AlreadyExists, "plan %q is defined more than once", entry.Name)
		}
		p, rejected, err := buildPlan(entry)
		if err != nil {
			return nil, err
		}
		s.Plans = append(s.Plans, p)
		s.note(entry.Name, rejected)
	}
	for _, entry := range doc.Demands {
		if err := validName("demand", entry.Name); err != nil {
			return nil, err
		}
		if _, err := s.Demand(entry.Name); err == nil {
			return nil, errors.Wrapf(errors.AlreadyExists, "demand %q is defined more than once", entry.Name)
		}
		d, rejected, err := buildDemand(entry)
		if err != nil {
			return nil, err
		}
		s.Demands = append(s.Demands, d)
		s.note(entry.Name, rejected)
	}
	return s, nil
}

// Plan returns the plan called name.
func (s *Scenario) Plan(name string) (*fit.Plan, error) {
	i := slices.IndexFunc(s.Plans, func(p *fit.Plan) bool { return p.Name == name })
	if i < 0 {
		return nil, errors.Wrapf(errors.NotFound, "plan %q not found", name)
	}
	return s.Plans[i], nil
}

// Demand returns the demand called name.
func (s *Scenario) Demand(name string) (*fit.Demand, error) {
	i := slices.IndexFunc(s.Demands, func(d *fit.Demand) bool { return d.Name == name })
	if i < 0 {
		return nil, errors.Wrapf(errors.NotFound, "demand %q not found", name)
	}
	return s.Demands[i], nil
}

func (s *Scenario) note(owner string, rejected []capacity.Rejection) {
	for _, r := range rejected {
		logger.Debug("quota rejected", "owner", owner, "quota", r.Quota.String(), "reason", r.Reason)
		s.Rejections = append(s.Rejections, Rejection{Owner: owner, Quota: r.Quota, Reason: r.Reason})
	}
}

func validName(kind, name string) error {
	if name == "" {
		return errors.Wrapf(errors.InvalidArgument, "every %s needs a name", kind)
	}
	if !utils.IsValidName(name) {
		return errors.Wrapf(errors.InvalidArgument, "invalid %s name %q", kind, name)
	}
	return nil
}

func buildPlan(entry PlanEntry) (*fit.Plan, []capacity.Rejection, error) {
	opts := []capacity.Option{capacity.WithQuotas(entry.Quotas...)}
	if entry.MaxActive != nil {
		opts = append(opts, capacity.WithMaxActiveTime(*entry.MaxActive))
	}
	model, rejected, err := capacity.NewModel(entry.Rate, opts...)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.GetErrCode(err), "plan %q: %s", entry.Name, err)
	}

	planOpts := []fit.PlanOption{fit.WithCost(entry.Cost, entry.OverageCost)}
	if entry.MaxSubscriptions != 0 {
		planOpts = append(planOpts, fit.WithMaxSubscriptions(entry.MaxSubscriptions))
	}
	if entry.BillingPeriod != nil {
		planOpts = append(planOpts, fit.WithBillingPeriod(*entry.BillingPeriod))
	}
	p, err := fit.NewPlan(entry.Name, model, planOpts...)
	if err != nil {
		return nil, nil, err
	}
	return p, rejected, nil
}

func buildDemand(entry DemandEntry) (*fit.Demand, []capacity.Rejection, error) {
	d, rejected, err := fit.NewDemand(entry.Name, entry.Rate, entry.Duration, entry.Quotas...)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case entry.Users < 0:
		return nil, nil, errors.Wrapf(errors.InvalidArgument, "demand %q: users must be positive, got %d", entry.Name, entry.Users)
	case entry.Users > 1:
		return d.MultiplyBy(entry.Users)
	}
	return d, rejected, nil
}
