package cli

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/rangetrader/internal/runner"
	"github.com/rustyeddy/rangetrader/market"
)

func newBacktestCmd(rc *RootConfig) *cobra.Command {
	var (
		barsPath, levelsPath, outDir string
		fromStr, toStr, kind         string
		dow, hold, chunkDays         int
		fixedStop, trail, multiplier float64
		minRange, stopPts, targetPts float64
		enriched, org                bool
		journalType, dbPath, dsn     string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a backtest and write the trade ledger",
		Example: `  rangetrader backtest --bars data/es_1min_data.csv.xz --levels data/es_1D_data_range.csv \
      --from 2022-01-01 --to 2022-03-31 --trail 2 --hold 1
  rangetrader backtest --bars data/es_1min_data.csv.xz --kind contrarian --contra-stop 50 --contra-target 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rc.Config
			f := cmd.Flags()

			setString(f.Changed("bars"), &cfg.Data.BarsPath, barsPath)
			setString(f.Changed("levels"), &cfg.Data.LevelsPath, levelsPath)
			setString(f.Changed("out"), &cfg.Data.OutputDir, outDir)
			setString(f.Changed("journal"), &cfg.Journal.Type, journalType)
			setString(f.Changed("db"), &cfg.Journal.DBPath, dbPath)
			setString(f.Changed("dsn"), &cfg.Journal.DSN, dsn)
			setString(f.Changed("kind"), &cfg.Strategy.Kind, kind)
			if f.Changed("contra-range") {
				cfg.Strategy.Contra.MinRange = minRange
			}
			if f.Changed("contra-stop") {
				cfg.Strategy.Contra.StopPoints = stopPts
			}
			if f.Changed("contra-target") {
				cfg.Strategy.Contra.TargetPoints = targetPts
			}
			if f.Changed("dow") {
				cfg.Strategy.DOWFilter = dow
			}
			if f.Changed("hold") {
				cfg.Strategy.HoldingDays = hold
			}
			if f.Changed("trail") {
				cfg.Strategy.TrailPoints = trail
			}
			if f.Changed("multiplier") {
				cfg.Strategy.ContractMultiplier = multiplier
			}
			if f.Changed("fixed-stop") {
				cfg.Strategy.UseFixedStop = fixedStop > 0
				if fixedStop > 0 {
					cfg.Strategy.FixedStopCurrency = fixedStop
				}
			}
			if f.Changed("chunk-days") {
				cfg.Data.ChunkDays = chunkDays
			}
			if f.Changed("enriched") {
				cfg.Data.Enriched = enriched
			}
			if f.Changed("org") {
				cfg.Journal.Org = org
			}
			if fromStr != "" {
				d, err := market.ParseDate(fromStr)
				if err != nil {
					return err
				}
				cfg.Strategy.DateRange.From = d
			}
			if toStr != "" {
				d, err := market.ParseDate(toStr)
				if err != nil {
					return err
				}
				cfg.Strategy.DateRange.To = d
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			j, err := runner.OpenJournal(cfg.Journal)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
			}

			r := &runner.Runner{Config: cfg, Log: rc.Log, Journal: j}
			out, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			runner.PrintRun(cmd.OutOrStdout(), out.Run)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&barsPath, "bars", "", "Minute bar CSV (.csv, .csv.gz, .csv.xz)")
	f.StringVar(&levelsPath, "levels", "", "Daily level CSV; built from the bars when omitted")
	f.StringVar(&outDir, "out", "", "Output directory for ledger and reports")
	f.StringVar(&kind, "kind", "", "Strategy: breakout|contrarian (default breakout)")
	f.StringVar(&fromStr, "from", "", "First trading day YYYY-MM-DD (inclusive)")
	f.StringVar(&toStr, "to", "", "Last trading day YYYY-MM-DD (inclusive)")
	f.IntVar(&dow, "dow", 0, "Only enter on this weekday: 1=Mon .. 5=Fri, 0=any")
	f.IntVar(&hold, "hold", 0, "Calendar days to hold; 0 exits at end of day")
	f.Float64Var(&fixedStop, "fixed-stop", 0, "Fixed stop in currency per contract; 0 uses range stops")
	f.Float64Var(&trail, "trail", 0, "Profit in points that moves the stop to breakeven; 0 disables")
	f.Float64Var(&multiplier, "multiplier", 50, "Currency per point")
	f.Float64Var(&minRange, "contra-range", 100, "Contrarian: previous-day range in points that must be exceeded")
	f.Float64Var(&stopPts, "contra-stop", 50, "Contrarian: stop distance in points")
	f.Float64Var(&targetPts, "contra-target", 100, "Contrarian: profit target in points")
	f.IntVar(&chunkDays, "chunk-days", 0, "Simulate independent chunks of N trading days in parallel")
	f.BoolVar(&enriched, "enriched", false, "Also write the bar feed with trade markers")
	f.BoolVar(&org, "org", false, "Also write an Org report")
	f.StringVar(&journalType, "journal", "", "Journal: csv|sqlite|postgres")
	f.StringVar(&dbPath, "db", "", "SQLite journal database")
	f.StringVar(&dsn, "dsn", "", "Postgres DSN")

	return cmd
}

func setString(changed bool, dst *string, v string) {
	if changed {
		*dst = v
	}
}
