// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package cli implements the capacityctl command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/fit"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/scenario"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/values"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// rootOptions carries the persistent flags every command reads its
// model from.
type rootOptions struct {
	rate     string
	quotas   []string
	active   string
	scenario string
	plan     string
	output   string

	loaded *scenario.Scenario
	// quotas dropped while building the selected model
	rejected []capacity.Rejection
}

// NewRootCmd builds the capacityctl command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "capacityctl",
		Short: "Explore tiered API rate limits and quotas",
		Long: `capacityctl answers capacity questions about an API plan made of a base
rate and quota windows, and checks whether a demand fits into a plan.

A model is given either inline or as a plan of a scenario file:
  capacityctl at 2h --rate 10/1s --quota 1800/1h
  capacityctl fit --scenario pricing.yaml --plan basic --demand crawler`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := values.NewLogger("capacityctl")
			capacity.SetLogger(log.Named("capacity"))
			scenario.SetLogger(log.Named("scenario"))
			switch o.output {
			case outputText, outputJSON, outputYAML:
				return nil
			}
			return errors.Wrapf(errors.InvalidArgument, "unknown output format %q", o.output)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.rate, "rate", "", "base rate as N/duration, e.g. 10/1s")
	flags.StringArrayVar(&o.quotas, "quota", nil, "quota window as N/duration, repeatable, e.g. 1800/1h")
	flags.StringVar(&o.active, "active", "", "max active time of the model, e.g. 2h")
	flags.StringVar(&o.scenario, "scenario", "", "YAML scenario file with plans and demands")
	flags.StringVar(&o.plan, "plan", "", "plan of the scenario to use as the model")
	flags.StringVarP(&o.output, "output", "o", outputText, "output format: text, json or yaml")

	cmd.AddCommand(
		newAtCmd(o),
		newDuringCmd(o),
		newMinTimeCmd(o),
		newThresholdsCmd(o),
		newInflectionsCmd(o),
		newSampleCmd(o),
		newWindowCmd(o),
		newFitCmd(o),
		newCoverCmd(o),
		newRescheduleCmd(o),
	)
	return cmd
}

// Execute runs capacityctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load() (*scenario.Scenario, error) {
	if o.loaded == nil {
		s, err := scenario.Load(o.scenario)
		if err != nil {
			return nil, err
		}
		o.loaded = s
	}
	return o.loaded, nil
}

// planOf returns the plan named on the command line, or an unpriced
// plan around the inline model.
func (o *rootOptions) planOf() (*fit.Plan, error) {
	if o.scenario != "" {
		if o.plan == "" {
			return nil, errors.Wrap(errors.InvalidArgument, "--plan is required with --scenario")
		}
		s, err := o.load()
		if err != nil {
			return nil, err
		}
		p, err := s.Plan(o.plan)
		if err != nil {
			return nil, err
		}
		o.rejected = nil
		for _, r := range s.Rejections {
			if r.Owner == o.plan {
				o.rejected = append(o.rejected, capacity.Rejection{Quota: r.Quota, Reason: r.Reason})
			}
		}
		return p, nil
	}
	m, rejected, err := o.inlineModel()
	if err != nil {
		return nil, err
	}
	o.rejected = rejected
	return fit.NewPlan("inline", m)
}

func (o *rootOptions) model() (*capacity.Model, error) {
	p, err := o.planOf()
	if err != nil {
		return nil, err
	}
	return p.Model, nil
}

func (o *rootOptions) inlineModel() (*capacity.Model, []capacity.Rejection, error) {
	if o.rate == "" {
		return nil, nil, errors.Wrap(errors.InvalidArgument, "either --rate or --scenario with --plan is required")
	}
	base, err := rate.ParseUnitary(o.rate)
	if err != nil {
		return nil, nil, err
	}
	quotas, err := parseQuotas(o.quotas)
	if err != nil {
		return nil, nil, err
	}
	opts := []capacity.Option{capacity.WithQuotas(quotas...)}
	if o.active != "" {
		active, err := timeval.Parse(o.active)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, capacity.WithMaxActiveTime(active))
	}
	return capacity.NewModel(base, opts...)
}

// writeRejected lists the quotas the model was built without.
func (o *rootOptions) writeRejected(w io.Writer) error {
	for _, r := range o.rejected {
		if _, err := fmt.Fprintf(w, "omitted %s\n", r); err != nil {
			return err
		}
	}
	return nil
}

func parseQuotas(texts []string) ([]rate.QuotaWindow, error) {
	quotas := make([]rate.QuotaWindow, 0, len(texts))
	for _, text := range texts {
		q, err := rate.ParseQuota(text)
		if err != nil {
			return nil, err
		}
		quotas = append(quotas, q)
	}
	return quotas, nil
}

// render writes v in the selected structured format, or through text
// for the human readable one.
func (o *rootOptions) render(cmd *cobra.Command, v any, text func(io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch o.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(w)
}

func formatCount(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
