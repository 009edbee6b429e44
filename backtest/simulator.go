package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/rangetrader/market"
)

// Result is the outcome of one fold over a bar feed.
type Result struct {
	Trades      Ledger
	Bars        int
	Days        int
	SkippedDays int
	Breakevens  int

	Start time.Time
	End   time.Time
}

// Simulator runs the position state machine over a feed. It holds no
// per-run state and may be shared between goroutines.
type Simulator struct {
	cfg   Config
	rules Strategy
	log   *zap.Logger
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSimulator validates cfg before any bar is read.
func NewSimulator(cfg Config, levels *market.LevelTable, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:   cfg,
		rules: NewStrategy(cfg, levels),
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

// Run folds Step over bars. The feed must be strictly time ordered. A
// position still open on the final bar is closed there with
// END_OF_PERIOD.
func (s *Simulator) Run(bars market.Bars) (Result, error) {
	if err := bars.Validate(); err != nil {
		return Result{}, err
	}

	var (
		res Result
		st  State
	)
	res.Bars = len(bars)
	if len(bars) == 0 {
		return res, nil
	}
	res.Start = bars[0].Time
	res.End = bars[len(bars)-1].Time

	for i, b := range bars {
		bc := BarContext{
			Bar:        b,
			LastOfDay:  bars.LastOfDay(i),
			LastOfFeed: i == len(bars)-1,
		}

		var ev Event
		st, ev = s.rules.Step(st, bc)

		if ev.NewDay {
			res.Days++
			if ev.SkippedDay {
				res.SkippedDays++
				s.log.Debug("day not tradable, no entries today", zap.Stringer("date", st.Day.Date))
			}
		}
		if ev.Entry != nil {
			s.log.Debug("entry",
				zap.Stringer("side", ev.Entry.Side),
				zap.Time("time", ev.Entry.EntryTime),
				zap.Float64("price", ev.Entry.EntryPrice),
				zap.Float64("stop", ev.Entry.InitialStop),
			)
		}
		if ev.Breakeven {
			res.Breakevens++
		}
		if ev.Trade != nil {
			res.Trades = append(res.Trades, *ev.Trade)
			s.log.Debug("exit",
				zap.String("reason", string(ev.Trade.ExitReason)),
				zap.Time("time", ev.Trade.ExitTime),
				zap.Float64("pnl_points", ev.Trade.PnLPoints),
			)
		}
	}

	if !st.Flat() {
		// Step always closes on the last bar; reaching here is a rules bug.
		return res, fmt.Errorf("backtest: position still open after final bar %s", res.End.Format(time.RFC3339))
	}

	s.log.Info("backtest complete",
		zap.Int("bars", res.Bars),
		zap.Int("days", res.Days),
		zap.Int("skipped_days", res.SkippedDays),
		zap.Int("trades", len(res.Trades)),
	)
	return res, nil
}

// RunRanges runs independent date ranges concurrently and concatenates the
// results in range order. Each range starts flat and is closed at its own
// end, so more than one range is refused unless the config is Splittable.
func (s *Simulator) RunRanges(ctx context.Context, ranges []market.Bars) (Result, error) {
	if len(ranges) > 1 && !s.cfg.Splittable() {
		return Result{}, fmt.Errorf("%w: positions may cross a day boundary (holding_days %d, kind %q); run the feed as one range",
			ErrInvalidConfig, s.cfg.HoldingDays, s.cfg.StrategyName())
	}
	results := make([]Result, len(ranges))
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, bars := range ranges {
		wg.Add(1)
		go func(i int, bars market.Bars) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = s.Run(bars)
		}(i, bars)
	}
	wg.Wait()

	var out Result
	for i, r := range results {
		if errs[i] != nil {
			return Result{}, fmt.Errorf("range %d: %w", i, errs[i])
		}
		out.Trades = append(out.Trades, r.Trades...)
		out.Bars += r.Bars
		out.Days += r.Days
		out.SkippedDays += r.SkippedDays
		out.Breakevens += r.Breakevens
		if r.Bars == 0 {
			continue
		}
		if out.Start.IsZero() || r.Start.Before(out.Start) {
			out.Start = r.Start
		}
		if r.End.After(out.End) {
			out.End = r.End
		}
	}
	return out, nil
}
