// Package runner wires a configured backtest end to end: load the feed and
// levels, simulate, write the ledger and record the run.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/config"
	"github.com/rustyeddy/rangetrader/journal"
	"github.com/rustyeddy/rangetrader/levels"
	"github.com/rustyeddy/rangetrader/market"
	"github.com/rustyeddy/rangetrader/pkg/id"
)

// Runner drives one backtest from a Config.
type Runner struct {
	Config *config.Config
	Log    *zap.Logger

	// Journal, when set, also records the run (sqlite or postgres). The
	// CSV ledger is always written.
	Journal journal.Journal

	// Now stamps the run; defaults to time.Now.
	Now func() time.Time
}

// Output is everything a run produced.
type Output struct {
	Run          journal.Run
	Result       backtest.Result
	EnrichedPath string
}

// Run executes the backtest loop:
//  1. load bars (date range applied, Sundays dropped)
//  2. load or build the level table
//  3. fold the simulator over the bars
//  4. write ledger, optional enriched feed and Org report
//  5. record the run in the configured journal
func (r *Runner) Run(ctx context.Context) (Output, error) {
	if r.Config == nil {
		return Output{}, fmt.Errorf("runner: Config is required")
	}
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return Output{}, err
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	bars, err := backtest.LoadBars(cfg.Data.BarsPath, cfg.Strategy.DateRange)
	if err != nil {
		return Output{}, err
	}
	log.Info("bars loaded", zap.String("path", cfg.Data.BarsPath), zap.Int("bars", len(bars)))

	table, levelsSrc, err := r.levels(log)
	if err != nil {
		return Output{}, err
	}

	sim, err := backtest.NewSimulator(cfg.Strategy, table, backtest.WithLogger(log))
	if err != nil {
		return Output{}, err
	}

	var res backtest.Result
	if cfg.Data.ChunkDays > 0 {
		chunks := bars.Split(cfg.Data.ChunkDays)
		log.Debug("running chunks", zap.Int("chunks", len(chunks)))
		res, err = sim.RunRanges(ctx, chunks)
	} else {
		res, err = sim.Run(bars)
	}
	if err != nil {
		return Output{}, err
	}

	created := now().UTC()
	run := journal.Run{
		RunID:       id.NewAt(created),
		Created:     created,
		Strategy:    cfg.Strategy.StrategyName(),
		Dataset:     filepath.Base(cfg.Data.BarsPath),
		Levels:      levelsSrc,
		Config:      cfg.Strategy,
		Start:       res.Start,
		End:         res.End,
		Days:        res.Days,
		SkippedDays: res.SkippedDays,
		Summary:     journal.Summarize(res.Trades),
	}

	csvJ, err := journal.NewCSV(cfg.Data.OutputDir)
	if err != nil {
		return Output{}, err
	}
	run.LedgerPath = csvJ.LedgerPath(run)
	if cfg.Journal.Org {
		run.OrgPath = strings.TrimSuffix(run.LedgerPath, ".csv") + ".org"
	}

	if err := csvJ.RecordRun(ctx, run, res.Trades); err != nil {
		return Output{}, err
	}
	out := Output{Run: run, Result: res}

	if cfg.Data.Enriched {
		dr := run.Range()
		out.EnrichedPath = filepath.Join(cfg.Data.OutputDir, cfg.Strategy.EnrichedFileName(dr.From, dr.To))
		if err := journal.SaveEnriched(out.EnrichedPath, backtest.Enrich(bars, res.Trades)); err != nil {
			return Output{}, err
		}
	}
	if run.OrgPath != "" {
		if err := run.SaveOrg(); err != nil {
			return Output{}, err
		}
	}
	if r.Journal != nil {
		if err := r.Journal.RecordRun(ctx, run, res.Trades); err != nil {
			return Output{}, fmt.Errorf("record run: %w", err)
		}
	}

	log.Info("run recorded",
		zap.String("run_id", run.RunID),
		zap.String("ledger", run.LedgerPath),
		zap.Int("trades", run.Summary.Trades),
		zap.Float64("net", run.Summary.NetCurrency),
	)
	return out, nil
}

func (r *Runner) levels(log *zap.Logger) (*market.LevelTable, string, error) {
	cfg := r.Config
	if cfg.Strategy.IsContrarian() {
		return nil, "", nil
	}
	if cfg.Data.LevelsPath != "" {
		t, err := backtest.LoadLevels(cfg.Data.LevelsPath)
		if err != nil {
			return nil, "", err
		}
		log.Info("levels loaded", zap.String("path", cfg.Data.LevelsPath), zap.Int("days", t.Len()))
		return t, filepath.Base(cfg.Data.LevelsPath), nil
	}

	days, err := BuildLevels(cfg.Data.BarsPath, cfg.Levels)
	if err != nil {
		return nil, "", err
	}
	log.Info("levels built from bars", zap.Int("days", len(days)))
	return levels.Table(days), "built", nil
}

// BuildLevels derives the daily level table from the full minute feed.
func BuildLevels(barsPath string, p levels.Params) ([]levels.Day, error) {
	all, err := backtest.LoadAllBars(barsPath)
	if err != nil {
		return nil, err
	}
	days, err := levels.Build(all, p)
	if err != nil {
		return nil, fmt.Errorf("build levels: %w", err)
	}
	return days, nil
}

// OpenJournal returns the store named by cfg, or nil for csv, which the
// runner always writes.
func OpenJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "csv":
		return nil, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "postgres":
		j, err := journal.NewPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}
