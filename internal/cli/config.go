package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rangetrader/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files for backtest runs.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  rangetrader config init -o backtest.yaml
  rangetrader config validate -f backtest.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  rangetrader --config %s backtest\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "backtest.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			s := cfg.Strategy
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Bars: %s\n", cfg.Data.BarsPath)
			switch {
			case s.IsContrarian():
				fmt.Fprintf(out, "  Strategy: %s (range > %g, stop %g, target %g)\n",
					s.StrategyName(), s.Contra.MinRange, s.Contra.StopPoints, s.Contra.TargetPoints)
			default:
				if cfg.Data.LevelsPath != "" {
					fmt.Fprintf(out, "  Levels: %s\n", cfg.Data.LevelsPath)
				} else {
					fmt.Fprintf(out, "  Levels: built (expansion %g, stop x%g, lookback %d)\n",
						cfg.Levels.Expansion, cfg.Levels.StopMultiplier, cfg.Levels.Lookback)
				}
				fmt.Fprintf(out, "  Strategy: %s (trail %g, hold %dd)\n", s.StopPolicy().Tag(), s.TrailPoints, s.HoldingDays)
			}
			fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
