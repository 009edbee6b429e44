package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rangetrader/internal/runner"
	"github.com/rustyeddy/rangetrader/levels"
)

func newLevelsCmd(rc *RootConfig) *cobra.Command {
	var (
		barsPath, outPath string
		p                 levels.Params
	)

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Build the daily entry and stop levels from minute bars",
		Example: `  rangetrader levels --bars data/es_1min_data.csv.xz --out data/es_1D_data_range.csv
  rangetrader levels --expansion 0.5 --stop-multiplier 2 --lookback 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rc.Config
			if barsPath == "" {
				barsPath = cfg.Data.BarsPath
			}
			params := cfg.Levels
			f := cmd.Flags()
			if f.Changed("expansion") {
				params.Expansion = p.Expansion
			}
			if f.Changed("stop-multiplier") {
				params.StopMultiplier = p.StopMultiplier
			}
			if f.Changed("lookback") {
				params.Lookback = p.Lookback
			}

			days, err := runner.BuildLevels(barsPath, params)
			if err != nil {
				return err
			}
			if err := levels.SaveCSV(outPath, days); err != nil {
				return err
			}
			rc.Log.Info("levels written",
				zap.String("bars", barsPath),
				zap.String("out", outPath),
				zap.Int("days", len(days)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d days of levels: %s\n", len(days), outPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&barsPath, "bars", "", "Minute bar CSV (defaults to data.bars)")
	f.StringVarP(&outPath, "out", "o", "data/es_1D_data_range.csv", "Output level CSV")
	f.Float64Var(&p.Expansion, "expansion", 0, "Fraction of the average range added to the open for entries")
	f.Float64Var(&p.StopMultiplier, "stop-multiplier", 0, "Multiple of the entry distance used for stops")
	f.IntVar(&p.Lookback, "lookback", 0, "Days in the rolling range average")

	return cmd
}
