package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/rangetrader/backtest"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleTrades())

	assert.Equal(t, 5, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.Flat)
	assert.Equal(t, 40.0, s.WinRate)
	assert.Equal(t, 225.0, s.NetCurrency)
	assert.Equal(t, 4.5, s.NetPoints)
	assert.Equal(t, 45.0, s.AvgCurrency)
	assert.Equal(t, 300.0, s.GrossProfit)
	assert.Equal(t, 75.0, s.GrossLoss)
	assert.Equal(t, 4.0, s.ProfitFactor)
	assert.Equal(t, 150.0, s.AvgWin)
	assert.Equal(t, -37.5, s.AvgLoss)
	assert.Equal(t, 200.0, s.Best)
	assert.Equal(t, -50.0, s.Worst)
	assert.Equal(t, 1, s.MaxWinStreak)
	assert.Equal(t, 2, s.MaxLossStreak)
	assert.Equal(t, 75.0, s.MaxDrawdown)
	assert.Equal(t, 384.0, s.AvgDurationMinutes)

	assert.Equal(t, 75.0, s.MaxDrawdownPct)
	assert.Equal(t, 2, s.MaxDrawdownTrades)
	assert.Equal(t, 103.68, s.Volatility)
	assert.Equal(t, 0.43, s.Sharpe)
	assert.Equal(t, 2.55, s.Sortino)
	assert.Equal(t, 4, s.PeriodDays)
	assert.Equal(t, 20531.25, s.AnnualReturn)
	assert.Equal(t, 273.75, s.Calmar)

	assert.Equal(t, []backtest.ExitReason{backtest.ExitEndOfDay, backtest.ExitEndOfPeriod, backtest.ExitStopLoss}, s.Reasons())
	assert.Equal(t, Bucket{Trades: 2, Wins: 2, PnLCurrency: 300}, s.ByReason[backtest.ExitEndOfDay])
	assert.Equal(t, Bucket{Trades: 2, PnLCurrency: -75}, s.ByReason[backtest.ExitStopLoss])

	assert.Equal(t, []backtest.Side{backtest.Long, backtest.Short}, s.Sides())
	assert.Equal(t, Bucket{Trades: 3, Wins: 2, PnLCurrency: 275}, s.BySide[backtest.Long])
	assert.InDelta(t, 66.67, s.BySide[backtest.Long].WinRate(), 0.01)
}

func TestSummarizeEdges(t *testing.T) {
	t.Parallel()

	empty := Summarize(nil)
	assert.Zero(t, empty.Trades)
	assert.Zero(t, empty.WinRate)
	assert.Empty(t, empty.Reasons())

	onlyWins := Summarize(sampleTrades()[:1])
	assert.Equal(t, 0.0, onlyWins.ProfitFactor)
	assert.Equal(t, 0.0, onlyWins.MaxDrawdown)
	assert.Equal(t, 0.0, onlyWins.MaxDrawdownPct)
	assert.Zero(t, onlyWins.MaxDrawdownTrades)
	assert.Zero(t, onlyWins.Volatility)
	assert.Zero(t, onlyWins.Sharpe)
	assert.Zero(t, onlyWins.Sortino)
	assert.Zero(t, onlyWins.PeriodDays)
	assert.Equal(t, 100.0, onlyWins.AnnualReturn)
	assert.Zero(t, onlyWins.Calmar)

	// a first loss counts as drawdown from zero but has no peak to
	// measure a percentage against
	onlyLoss := Summarize(sampleTrades()[1:2])
	assert.Equal(t, 50.0, onlyLoss.MaxDrawdown)
	assert.Equal(t, 0.0, onlyLoss.MaxDrawdownPct)
	assert.Equal(t, 1, onlyLoss.MaxDrawdownTrades)
	assert.Equal(t, -50.0, onlyLoss.AnnualReturn)
	assert.Equal(t, -1.0, onlyLoss.Calmar)
	assert.Equal(t, 0.0, Bucket{}.WinRate())
}

func TestSummarizeRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trades     []backtest.Trade
		vol        float64
		sharpe     float64
		sortino    float64
		ddPct      float64
		ddTrades   int
		periodDays int
	}{
		{
			name:   "no losses",
			trades: []backtest.Trade{sampleTrades()[0], sampleTrades()[3]},
			// +100, +200
			vol:        70.71,
			sharpe:     2.12,
			periodDays: 3,
		},
		{
			name:   "one loss has no downside deviation",
			trades: []backtest.Trade{sampleTrades()[0], sampleTrades()[1]},
			// +100, -50
			vol:        106.07,
			sharpe:     0.24,
			ddPct:      50,
			ddTrades:   1,
			periodDays: 1,
		},
		{
			name:   "recovered drawdown",
			trades: []backtest.Trade{sampleTrades()[0], sampleTrades()[1], sampleTrades()[2], sampleTrades()[3]},
			// +100, -50, -25, +200
			vol:        116.14,
			sharpe:     0.48,
			sortino:    3.18,
			ddPct:      75,
			ddTrades:   2,
			periodDays: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.trades)
			assert.Equal(t, tt.vol, s.Volatility)
			assert.Equal(t, tt.sharpe, s.Sharpe)
			assert.Equal(t, tt.sortino, s.Sortino)
			assert.Equal(t, tt.ddPct, s.MaxDrawdownPct)
			assert.Equal(t, tt.ddTrades, s.MaxDrawdownTrades)
			assert.Equal(t, tt.periodDays, s.PeriodDays)
		})
	}
}
