package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-tally/internal/application"
	"github.com/ahrav/go-tally/internal/logger"
)

// cli holds the state shared by every subcommand once flags are parsed.
type cli struct {
	cfgFile  string
	format   string
	logLevel string

	cfg application.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tally",
		Short: "Score weighted decisions",
		Long: `tally aggregates participant ratings into one normalized total per option.

Each criterion carries a weight. Ratings are averaged per option and
criterion, weighted, and rescaled so that a criterion nobody rated never
lowers an option's total.

Examples:
  tally score laptop.yaml
  tally score --format json decisions/*.yaml
  tally shares laptop.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().StringVarP(&c.format, "format", "f", "", "output format: table, csv, or json")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, or error")

	root.AddCommand(newScoreCmd(c), newSharesCmd(c))
	return root
}

// init loads configuration, applies flag overrides, and builds the logger.
func (c *cli) init(cmd *cobra.Command) error {
	cfg := application.DefaultConfig()
	if c.cfgFile != "" {
		loaded, err := application.LoadConfig(c.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.format != "" {
		cfg.Output.Format = c.format
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	c.cfg = cfg

	c.log = logger.New(logger.Config{
		Environment: cfg.Logging.Environment,
		LogLevel:    cfg.Logging.Level,
		ServiceName: cfg.Logging.ServiceName,
		Output:      cmd.ErrOrStderr(),
	})
	return nil
}
