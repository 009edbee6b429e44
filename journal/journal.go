// Package journal persists backtest runs: the trade ledger as CSV, run
// metadata and trades in SQLite or Postgres, and an Org report.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/market"
)

// Run mirrors the backtest_runs table.
type Run struct {
	RunID    string
	Created  time.Time
	Strategy string
	Dataset  string
	Levels   string

	Config backtest.Config

	// Bar window actually simulated.
	Start time.Time
	End   time.Time

	Days        int
	SkippedDays int

	Summary Summary

	LedgerPath string
	OrgPath    string

	Notes []string
}

// StrategyName is the name of the default breakout rules; see
// backtest.Config.StrategyName.
const StrategyName = "range_breakout"

// Range is the date window used for output file names: the configured
// range, with open ends filled from the first and last simulated bar so
// runs over different feeds get different names.
func (r Run) Range() market.DateRange {
	dr := r.Config.DateRange
	if dr.From.IsZero() && !r.Start.IsZero() {
		dr.From = market.DateOf(r.Start)
	}
	if dr.To.IsZero() && !r.End.IsZero() {
		dr.To = market.DateOf(r.End)
	}
	return dr
}

// Journal records a finished run and its trades.
type Journal interface {
	RecordRun(ctx context.Context, run Run, trades []backtest.Trade) error
	Close() error
}
