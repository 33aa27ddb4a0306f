package main

import (
	"github.com/spf13/cobra"

	"github.com/ahrav/go-tally/infrastructure/render"
	"github.com/ahrav/go-tally/infrastructure/units"
	"github.com/ahrav/go-tally/internal/application"
)

func newSharesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shares SNAPSHOT",
		Short: "Show each criterion's share of the total weight",
		Long: `Show the percentage of the total weight each criterion carries.

Shares are rounded independently, so they need not sum to exactly 100.
Criteria of a decision whose weights are all zero have no share.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.ForFormat(c.cfg.Output.Format)
			if err != nil {
				return err
			}

			loader, err := application.NewSnapshotLoader(c.cfg.Scoring)
			if err != nil {
				return err
			}
			snap, err := loader.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cfg := c.cfg
			cfg.Pipeline = []application.UnitConfig{{ID: "shares", Type: units.TypeWeightShare}}
			engine, err := application.NewEngine(cfg, application.NewDefaultUnitRegistry(), application.WithLogger(c.log))
			if err != nil {
				return err
			}

			result, err := engine.Evaluate(cmd.Context(), snap)
			if err != nil {
				return err
			}
			return renderer.RenderShares(cmd.OutOrStdout(), result.Shares)
		},
	}
}
