// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/fit"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
	"github.com/go-core-stack/capacity/utils"
	"github.com/go-core-stack/capacity/values"
)

// demandOptions selects the demand side of the fit commands, either a
// scenario entry or an inline description.
type demandOptions struct {
	name     string
	rate     string
	quotas   []string
	duration string
	users    int
}

func (d *demandOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&d.name, "demand", "", "demand of the scenario to fit")
	flags.StringVar(&d.rate, "demand-rate", "", "inline demand rate as N/duration")
	flags.StringArrayVar(&d.quotas, "demand-quota", nil, "inline demand quota as N/duration, repeatable")
	flags.StringVar(&d.duration, "demand-duration", "", "how long the inline demand stays active")
	flags.IntVar(&d.users, "users", 1, "number of identical consumers issuing the demand")
}

func (d *demandOptions) demand(o *rootOptions) (*fit.Demand, error) {
	var dem *fit.Demand
	switch {
	case d.name != "":
		if o.scenario == "" {
			return nil, errors.Wrap(errors.InvalidArgument, "--demand needs --scenario")
		}
		s, err := o.load()
		if err != nil {
			return nil, err
		}
		if dem, err = s.Demand(d.name); err != nil {
			return nil, err
		}
	case d.rate != "":
		r, err := rate.ParseUnitary(d.rate)
		if err != nil {
			return nil, err
		}
		quotas, err := parseQuotas(d.quotas)
		if err != nil {
			return nil, err
		}
		var duration *timeval.Value
		if d.duration != "" {
			v, err := timeval.Parse(d.duration)
			if err != nil {
				return nil, err
			}
			duration = utils.Pointer(v)
		}
		if dem, _, err = fit.NewDemand("inline", r, duration, quotas...); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrap(errors.InvalidArgument, "either --demand or --demand-rate is required")
	}
	if d.users != 1 {
		scaled, _, err := dem.MultiplyBy(d.users)
		if err != nil {
			return nil, err
		}
		dem = scaled
	}
	return dem, nil
}

func outputUnit(symbol string) (timeval.Unit, error) {
	if symbol == "" {
		return values.GetOutputUnit(), nil
	}
	return timeval.ParseUnit(symbol)
}

func newFitCmd(o *rootOptions) *cobra.Command {
	d := &demandOptions{}
	var unit string
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Check whether a demand fits into the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := o.planOf()
			if err != nil {
				return err
			}
			demand, err := d.demand(o)
			if err != nil {
				return err
			}
			u, err := outputUnit(unit)
			if err != nil {
				return err
			}
			r, err := fit.Analyze(plan, demand, fit.WithOutputUnit(u))
			if err != nil {
				return err
			}
			return o.render(cmd, r, func(w io.Writer) error {
				return writeReport(w, r)
			})
		},
	}
	d.addFlags(cmd)
	cmd.Flags().StringVar(&unit, "unit", "", "unit of the reported times")
	return cmd
}

func writeReport(w io.Writer, r *fit.Report) error {
	if !r.Feasible {
		if _, err := fmt.Fprintf(w, "not feasible: %s\n", r.Reason); err != nil {
			return err
		}
		if v := r.Violation; v != nil {
			_, err := fmt.Fprintf(w, "demand quota %s needs %s over %s, plan quota %s allows %s\n",
				v.DemandQuota, formatCount(v.DemandUnits), v.ComparedWindow, v.PlanQuota, formatCount(v.AllowedUnits))
			return err
		}
		_, err := fmt.Fprintf(w, "demand rate %s is faster than plan rate %s\n", r.DemandRate, r.PlanRate)
		return err
	}
	if r.MaxBacklog <= 0 {
		_, err := fmt.Fprintln(w, "feasible: the plan serves the demand without queueing")
		return err
	}
	_, err := fmt.Fprintf(w, "feasible with queueing: backlog of %s at %s, drained in %s\n",
		formatCount(r.MaxBacklog), r.PeakAt, r.DrainTime)
	if err != nil {
		return err
	}
	for _, s := range r.Schedule {
		if _, err := fmt.Fprintf(w, "  request %d at %s\n", s.ID, s.At); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "resume at %s in %s\n", r.ResumeRate, r.ResumeIn)
	return err
}

func newCoverCmd(o *rootOptions) *cobra.Command {
	d := &demandOptions{}
	cmd := &cobra.Command{
		Use:   "cover [horizon]",
		Short: "Check whether the plan keeps up with a demand over time",
		Long: `Compares the accumulated capacity of the plan and the demand at every
base period of the plan. The horizon defaults to the demand duration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := o.planOf()
			if err != nil {
				return err
			}
			demand, err := d.demand(o)
			if err != nil {
				return err
			}
			var horizon *timeval.Value
			if len(args) == 1 {
				v, err := timeval.Parse(args[0])
				if err != nil {
					return err
				}
				horizon = utils.Pointer(v)
			}
			c, err := fit.CoversConstantRate(plan, demand, horizon)
			if err != nil {
				return err
			}
			return o.render(cmd, c, func(w io.Writer) error {
				if c.Covered {
					_, err := fmt.Fprintf(w, "covered up to %s\n", c.Horizon)
					return err
				}
				_, err := fmt.Fprintf(w, "not covered at %s: plan %s, demand %s\n",
					c.At, formatCount(c.PlanCapacity), formatCount(c.DemandCapacity))
				return err
			})
		},
	}
	d.addFlags(cmd)
	return cmd
}

func newRescheduleCmd(o *rootOptions) *cobra.Command {
	d := &demandOptions{}
	var unit string
	cmd := &cobra.Command{
		Use:   "reschedule [horizon]",
		Short: "Plan, demand and rescheduled demand curves side by side",
		Long: `Samples the plan and the demand on the plan grid and adds the demand
as it looks once its backlog is queued behind the plan. The horizon
defaults to one covering every window and active time involved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := o.planOf()
			if err != nil {
				return err
			}
			demand, err := d.demand(o)
			if err != nil {
				return err
			}
			u, err := outputUnit(unit)
			if err != nil {
				return err
			}
			horizon := fit.CompareHorizon(plan, demand)
			if len(args) == 1 {
				if horizon, err = timeval.Parse(args[0]); err != nil {
					return err
				}
			}
			out, err := fit.Reschedule(plan, demand, horizon, u)
			if err != nil {
				return err
			}
			return o.render(cmd, out, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, "time\tplan\tdemand\trescheduled"); err != nil {
					return err
				}
				for _, p := range out.Series {
					_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Time,
						formatCount(p.Plan), formatCount(p.Demand), formatCount(p.Rescheduled))
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	d.addFlags(cmd)
	cmd.Flags().StringVar(&unit, "unit", "", "unit of the reported times")
	return cmd
}
