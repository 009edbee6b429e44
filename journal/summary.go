package journal

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/rangetrader/backtest"
)

// Bucket aggregates a subset of trades.
type Bucket struct {
	Trades      int
	Wins        int
	PnLCurrency float64
}

func (b Bucket) WinRate() float64 {
	if b.Trades == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Trades) * 100
}

// Summary is the performance breakdown of a ledger. Currency figures are
// rounded to cents.
type Summary struct {
	Trades int
	Wins   int
	Losses int
	Flat   int

	// WinRate is a percentage.
	WinRate float64

	NetPoints   float64
	NetCurrency float64
	AvgCurrency float64
	AvgWin      float64
	AvgLoss     float64
	GrossProfit float64
	GrossLoss   float64

	// ProfitFactor is GrossProfit / GrossLoss, 0 when there are no losses.
	ProfitFactor float64

	AvgDurationMinutes float64
	Best               float64
	Worst              float64

	MaxWinStreak  int
	MaxLossStreak int

	// MaxDrawdown is the largest peak to trough drop of cumulative
	// currency P&L, starting from zero. Reported as a positive number.
	MaxDrawdown float64
	// MaxDrawdownPct is the largest drop as a percentage of the running
	// peak, counted only once equity has been above zero.
	MaxDrawdownPct float64
	// MaxDrawdownTrades is the longest run of consecutive trades that
	// closed below the running peak.
	MaxDrawdownTrades int

	// Volatility is the sample standard deviation of per-trade currency
	// P&L. Sharpe and Sortino divide the average trade by it and by the
	// deviation of the losing trades; both assume a zero risk-free rate
	// and are 0 with fewer than two samples.
	Volatility float64
	Sharpe     float64
	Sortino    float64

	// PeriodDays is the whole days from the first entry to the last exit.
	PeriodDays int
	// AnnualReturn scales NetCurrency by 365 / PeriodDays (by 1 when the
	// trades span less than a day). Calmar is AnnualReturn / MaxDrawdown,
	// 0 without a drawdown.
	AnnualReturn float64
	Calmar       float64

	ByReason map[backtest.ExitReason]Bucket
	BySide   map[backtest.Side]Bucket
}

// Summarize computes the summary of trades taken in ledger order.
func Summarize(trades []backtest.Trade) Summary {
	s := Summary{
		ByReason: map[backtest.ExitReason]Bucket{},
		BySide:   map[backtest.Side]Bucket{},
	}
	if len(trades) == 0 {
		return s
	}

	var (
		net, points, gp, gl, dur decimal.Decimal
		equity, peak, dd, ddPct  decimal.Decimal
		winStreak, lossStreak    int
		underwater               int
		first, last              time.Time
	)
	s.Best, s.Worst = trades[0].PnLCurrency, trades[0].PnLCurrency
	first, last = trades[0].EntryTime, trades[0].ExitTime
	hundred := decimal.NewFromInt(100)

	for _, t := range trades {
		cash := decimal.NewFromFloat(t.PnLCurrency)
		net = net.Add(cash)
		points = points.Add(decimal.NewFromFloat(t.PnLPoints))
		dur = dur.Add(decimal.NewFromFloat(t.DurationMinutes))
		s.Best = max(s.Best, t.PnLCurrency)
		s.Worst = min(s.Worst, t.PnLCurrency)

		win := t.PnLCurrency > 0
		switch {
		case win:
			s.Wins++
			gp = gp.Add(cash)
			winStreak, lossStreak = winStreak+1, 0
			s.MaxWinStreak = max(s.MaxWinStreak, winStreak)
		case t.PnLCurrency < 0:
			s.Losses++
			gl = gl.Add(cash.Neg())
			winStreak, lossStreak = 0, lossStreak+1
			s.MaxLossStreak = max(s.MaxLossStreak, lossStreak)
		default:
			s.Flat++
		}

		equity = equity.Add(cash)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		d := peak.Sub(equity)
		dd = decimal.Max(dd, d)
		if peak.IsPositive() {
			ddPct = decimal.Max(ddPct, d.Mul(hundred).Div(peak))
		}
		if d.IsPositive() {
			underwater++
			s.MaxDrawdownTrades = max(s.MaxDrawdownTrades, underwater)
		} else {
			underwater = 0
		}
		if t.EntryTime.Before(first) {
			first = t.EntryTime
		}
		if t.ExitTime.After(last) {
			last = t.ExitTime
		}

		s.ByReason[t.ExitReason] = s.ByReason[t.ExitReason].add(t.PnLCurrency, win)
		s.BySide[t.Side] = s.BySide[t.Side].add(t.PnLCurrency, win)
	}

	n := decimal.NewFromInt(int64(len(trades)))
	s.Trades = len(trades)
	s.WinRate = round(decimal.NewFromInt(int64(s.Wins)).Mul(hundred).Div(n), 2)
	s.NetPoints = round(points, 2)
	s.NetCurrency = round(net, 2)
	s.AvgCurrency = round(net.Div(n), 2)
	s.GrossProfit = round(gp, 2)
	s.GrossLoss = round(gl, 2)
	s.AvgDurationMinutes = round(dur.Div(n), 1)
	s.MaxDrawdown = round(dd, 2)
	s.MaxDrawdownPct = round(ddPct, 2)
	if s.Wins > 0 {
		s.AvgWin = round(gp.Div(decimal.NewFromInt(int64(s.Wins))), 2)
	}
	if s.Losses > 0 {
		s.AvgLoss = round(gl.Neg().Div(decimal.NewFromInt(int64(s.Losses))), 2)
	}
	if gl.IsPositive() {
		s.ProfitFactor = round(gp.Div(gl), 2)
	}
	s.risk(trades, net.Div(n), dd, last.Sub(first))
	return s
}

// risk fills the dispersion ratios. decimal has no square root, so the
// variance is summed exactly and only the root is taken in float64.
func (s *Summary) risk(trades []backtest.Trade, mean, dd decimal.Decimal, span time.Duration) {
	var all, losses []decimal.Decimal
	for _, t := range trades {
		cash := decimal.NewFromFloat(t.PnLCurrency)
		all = append(all, cash)
		if cash.IsNegative() {
			losses = append(losses, cash)
		}
	}

	vol := stddev(all)
	s.Volatility = round(decimal.NewFromFloat(vol), 2)
	if vol > 0 {
		s.Sharpe = round(mean.Div(decimal.NewFromFloat(vol)), 2)
	}
	if down := stddev(losses); down > 0 {
		s.Sortino = round(mean.Div(decimal.NewFromFloat(down)), 2)
	}

	s.PeriodDays = int(span / (24 * time.Hour))
	annual := mean.Mul(decimal.NewFromInt(int64(len(trades))))
	if s.PeriodDays > 0 {
		annual = annual.Mul(decimal.NewFromInt(365)).Div(decimal.NewFromInt(int64(s.PeriodDays)))
	}
	s.AnnualReturn = round(annual, 2)
	if dd.IsPositive() {
		s.Calmar = round(annual.Div(dd), 2)
	}
}

// stddev is the sample (n-1) standard deviation; 0 below two values.
func stddev(xs []decimal.Decimal) float64 {
	if len(xs) < 2 {
		return 0
	}
	n := decimal.NewFromInt(int64(len(xs)))
	mean := decimal.Sum(xs[0], xs[1:]...).Div(n)
	var ss decimal.Decimal
	for _, x := range xs {
		d := x.Sub(mean)
		ss = ss.Add(d.Mul(d))
	}
	return math.Sqrt(ss.Div(n.Sub(decimal.NewFromInt(1))).InexactFloat64())
}

func (b Bucket) add(pnl float64, win bool) Bucket {
	b.Trades++
	if win {
		b.Wins++
	}
	b.PnLCurrency = round(decimal.NewFromFloat(b.PnLCurrency).Add(decimal.NewFromFloat(pnl)), 2)
	return b
}

// Reasons returns the exit reasons present, sorted.
func (s Summary) Reasons() []backtest.ExitReason {
	out := make([]backtest.ExitReason, 0, len(s.ByReason))
	for r := range s.ByReason {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sides returns the sides present, long first.
func (s Summary) Sides() []backtest.Side {
	var out []backtest.Side
	for _, side := range []backtest.Side{backtest.Long, backtest.Short} {
		if _, ok := s.BySide[side]; ok {
			out = append(out, side)
		}
	}
	return out
}

func round(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
