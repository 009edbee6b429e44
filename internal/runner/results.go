package runner

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/rangetrader/journal"
)

func PrintRun(w io.Writer, r journal.Run) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	if !r.Created.IsZero() {
		fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	}
	if r.Strategy != "" {
		fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	}
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}
	if r.Levels != "" {
		fmt.Fprintf(w, "Levels:        %s\n", r.Levels)
	}

	if !r.Start.IsZero() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Period")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Days:          %d (%d skipped)\n", r.Days, r.SkippedDays)
	}

	c := r.Config
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Strategy Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	switch {
	case c.IsContrarian():
		fmt.Fprintf(w, "Prior range:   > %g pts\n", c.Contra.MinRange)
		fmt.Fprintf(w, "Stop:          %g pts\n", c.Contra.StopPoints)
		fmt.Fprintf(w, "Target:        %g pts\n", c.Contra.TargetPoints)
	default:
		if c.UseFixedStop {
			fmt.Fprintf(w, "Stop:          fixed %.2f\n", c.FixedStopCurrency)
		} else {
			fmt.Fprintln(w, "Stop:          range")
		}
		fmt.Fprintf(w, "Trail:         %g pts\n", c.TrailPoints)
		fmt.Fprintf(w, "Holding:       %d days\n", c.HoldingDays)
	}
	if c.DOWFilter != 0 {
		fmt.Fprintf(w, "DOW filter:    %d\n", c.DOWFilter)
	}
	fmt.Fprintf(w, "Multiplier:    %g\n", c.ContractMultiplier)

	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Streaks:       %d wins / %d losses\n", s.MaxWinStreak, s.MaxLossStreak)
	fmt.Fprintf(w, "Avg Duration:  %.1f min\n", s.AvgDurationMinutes)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Net P/L:       %.2f (%.2f pts)\n", s.NetCurrency, s.NetPoints)
	fmt.Fprintf(w, "Avg Trade:     %.2f\n", s.AvgCurrency)
	fmt.Fprintf(w, "Best / Worst:  %.2f / %.2f\n", s.Best, s.Worst)
	if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	if s.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f (%.2f%%, %d trades)\n", s.MaxDrawdown, s.MaxDrawdownPct, s.MaxDrawdownTrades)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Annual Return: %.2f (%d days)\n", s.AnnualReturn, s.PeriodDays)
	fmt.Fprintf(w, "Volatility:    %.2f\n", s.Volatility)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", s.Sharpe)
	fmt.Fprintf(w, "Sortino:       %.2f\n", s.Sortino)
	fmt.Fprintf(w, "Calmar:        %.2f\n", s.Calmar)

	if len(s.ByReason) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By Exit Reason")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, reason := range s.Reasons() {
			b := s.ByReason[reason]
			fmt.Fprintf(w, "%-20s %4d trades  %6.2f%%  %10.2f\n", reason, b.Trades, b.WinRate(), b.PnLCurrency)
		}
	}
	if len(s.BySide) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By Side")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, side := range s.Sides() {
			b := s.BySide[side]
			fmt.Fprintf(w, "%-20s %4d trades  %6.2f%%  %10.2f\n", side, b.Trades, b.WinRate(), b.PnLCurrency)
		}
	}

	if r.LedgerPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Ledger:        %s\n", r.LedgerPath)
	}
	if r.OrgPath != "" {
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	fmt.Fprintln(w)
}
