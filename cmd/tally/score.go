package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/infrastructure/render"
	"github.com/ahrav/go-tally/internal/application"
	"github.com/ahrav/go-tally/internal/ports"
)

func newScoreCmd(c *cli) *cobra.Command {
	var (
		metricsFile string
		ranked      bool
	)

	cmd := &cobra.Command{
		Use:   "score SNAPSHOT [SNAPSHOT...]",
		Short: "Compute normalized option totals",
		Long: `Compute the normalized total of every option in each snapshot.

Snapshots are scored concurrently and printed in argument order. Totals
always carry two fractional digits. Options are listed in snapshot order
unless --ranked is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.ForFormat(c.cfg.Output.Format)
			if err != nil {
				return err
			}

			loader, err := application.NewSnapshotLoader(c.cfg.Scoring)
			if err != nil {
				return err
			}

			opts := []application.EngineOption{application.WithLogger(c.log)}
			var reg *prometheus.Registry
			if c.cfg.Metrics.Enabled || metricsFile != "" {
				reg = prometheus.NewRegistry()
				metrics := middleware.NewPrometheusMetrics(reg, c.cfg.Metrics.Namespace)
				opts = append(opts,
					application.WithMetrics(metrics),
					application.WithUnitWrapper(func(u ports.Unit) ports.Unit {
						return middleware.NewMetricsUnit(u, metrics)
					}),
				)
			}

			engine, err := application.NewEngine(c.cfg, application.NewDefaultUnitRegistry(), opts...)
			if err != nil {
				return err
			}

			results, err := engine.EvaluateRefs(cmd.Context(), loader, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				if res.Report == nil {
					return fmt.Errorf("pipeline produced no score report for %s", res.Ref)
				}
				if c.cfg.Output.Format == render.FormatTable && len(results) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "%s (%s)\n", res.Report.DecisionID, res.Ref)
				}
				report := *res.Report
				if ranked {
					report.Totals = report.Ranked()
				}
				if err := renderer.RenderReport(out, report); err != nil {
					return err
				}
			}

			if metricsFile != "" {
				return writeMetrics(reg, metricsFile)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ranked, "ranked", false, "list options from highest to lowest total")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus text metrics to this file after scoring")
	return cmd
}

// writeMetrics dumps every gathered family in the Prometheus text format.
func writeMetrics(reg *prometheus.Registry, path string) error {
	families, err := reg.Gather()
	if err != nil {
		return ports.NewMetricsError("*", "Gather", err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return ports.NewMetricsError("*", "Create", err)
	}
	defer f.Close()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return ports.NewMetricsError(mf.GetName(), "Write", err)
		}
	}
	return f.Close()
}
