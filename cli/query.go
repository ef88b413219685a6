// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
)

type capacityResult struct {
	Start    *timeval.Value `json:"start,omitempty" yaml:"start,omitempty"`
	End      timeval.Value  `json:"end" yaml:"end"`
	Capacity float64        `json:"capacity" yaml:"capacity"`
}

func newAtCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "at <time>",
		Short: "Requests available from the origin up to a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			t, err := timeval.Parse(args[0])
			if err != nil {
				return err
			}
			res := capacityResult{End: t, Capacity: m.CapacityAt(t)}
			return o.render(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %s\n", t, formatCount(res.Capacity))
				return err
			})
		},
	}
}

func newDuringCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "during <start> <end>",
		Short: "Requests available between two times",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			start, err := timeval.Parse(args[0])
			if err != nil {
				return err
			}
			end, err := timeval.Parse(args[1])
			if err != nil {
				return err
			}
			c, err := m.CapacityDuring(start, end)
			if err != nil {
				return err
			}
			res := capacityResult{Start: &start, End: end, Capacity: c}
			return o.render(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s..%s: %s\n", start, end, formatCount(c))
				return err
			})
		},
	}
}

type minTimeResult struct {
	Goal float64       `json:"goal" yaml:"goal"`
	Time timeval.Value `json:"time" yaml:"time"`
}

func newMinTimeCmd(o *rootOptions) *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "mintime <requests>",
		Short: "Earliest time by which a number of requests can be issued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			goal, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.Wrapf(errors.InvalidArgument, "invalid request count %q", args[0])
			}
			var units []timeval.Unit
			if unit != "" {
				u, err := timeval.ParseUnit(unit)
				if err != nil {
					return err
				}
				units = append(units, u)
			}
			t, err := m.MinTime(goal, units...)
			if err != nil {
				return err
			}
			res := minTimeResult{Goal: goal, Time: t}
			return o.render(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s requests: %s (%s)\n", formatCount(goal), t, timeval.Format(t))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "unit of the answer, defaults to the base rate period unit")
	return cmd
}

type thresholdResult struct {
	Quota     rate.QuotaWindow `json:"quota" yaml:"quota"`
	Threshold timeval.Value    `json:"threshold" yaml:"threshold"`
}

type thresholdsResult struct {
	Thresholds []thresholdResult    `json:"thresholds" yaml:"thresholds"`
	Rejected   []capacity.Rejection `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

func newThresholdsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Time at which each quota is exhausted from the origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			quotas := m.Quotas()
			res := make([]thresholdResult, 0, len(quotas))
			for i, t := range m.ExhaustionThresholds() {
				res = append(res, thresholdResult{Quota: quotas[i], Threshold: t})
			}
			out := thresholdsResult{Thresholds: res, Rejected: o.rejected}
			return o.render(cmd, out, func(w io.Writer) error {
				if err := o.writeRejected(w); err != nil {
					return err
				}
				if len(res) == 0 {
					_, err := fmt.Fprintln(w, "no quotas")
					return err
				}
				for _, r := range res {
					if _, err := fmt.Fprintf(w, "%s: %s\n", r.Quota, r.Threshold); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
