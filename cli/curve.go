// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-core-stack/capacity/capacity"
	"github.com/go-core-stack/capacity/timeval"
)

func writePoints(w io.Writer, points []capacity.Point, unit timeval.Unit) error {
	for _, p := range points {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Time().To(unit), formatCount(p.Capacity)); err != nil {
			return err
		}
	}
	return nil
}

func newInflectionsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inflections <horizon>",
		Short: "Points where the capacity curve changes slope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			horizon, err := timeval.Parse(args[0])
			if err != nil {
				return err
			}
			points, err := m.InflectionPoints(horizon)
			if err != nil {
				return err
			}
			return o.render(cmd, points, func(w io.Writer) error {
				if err := o.writeRejected(w); err != nil {
					return err
				}
				return writePoints(w, points, horizon.Unit())
			})
		},
	}
}

func newSampleCmd(o *rootOptions) *cobra.Command {
	var instantaneous bool
	cmd := &cobra.Command{
		Use:   "sample <horizon>",
		Short: "Capacity at every base period up to a horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			horizon, err := timeval.Parse(args[0])
			if err != nil {
				return err
			}
			sample := m.Sample
			if instantaneous {
				sample = m.SampleInstantaneous
			}
			points, err := sample(horizon)
			if err != nil {
				return err
			}
			return o.render(cmd, points, func(w io.Writer) error {
				return writePoints(w, points, horizon.Unit())
			})
		},
	}
	cmd.Flags().BoolVar(&instantaneous, "instantaneous", false, "restart the curve at every coarsest window")
	return cmd
}

func newWindowCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Load and discharge of the first quota window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.model()
			if err != nil {
				return err
			}
			a, err := m.AnalyzeWindow()
			if err != nil {
				return err
			}
			return o.render(cmd, a, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "window %s, %s units, exhausted after %s\n",
					a.Period, formatCount(a.QuotaUnits), a.Threshold)
				if err != nil {
					return err
				}
				switch {
				case len(a.Plateau) == 2:
					_, err = fmt.Fprintf(w, "plateau from %s to %s at %s\n",
						a.Plateau[0].Time().To(a.Period.Unit()), a.Plateau[1].Time().To(a.Period.Unit()),
						formatCount(a.Plateau[0].Capacity))
				case a.Intersection != nil:
					_, err = fmt.Fprintf(w, "load meets discharge at %s with %s\n",
						a.Intersection.Time().To(a.Period.Unit()), formatCount(a.Intersection.Capacity))
				}
				return err
			})
		},
	}
}
