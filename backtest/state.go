package backtest

import (
	"time"

	"github.com/rustyeddy/rangetrader/market"
)

// DayState is reset at every calendar-day boundary.
type DayState struct {
	Date     market.Date
	Levels   market.DailyLevels
	Tradable bool
	Fired    Fired
	Entered  bool

	PrevClose float64
	HasPrev   bool
}

// State is everything carried from one bar to the next. Pos is nil when
// the book is flat; it survives day boundaries, Day does not.
type State struct {
	Pos *Position
	Day DayState

	// Session and PrevSession are the running extremes of the current day
	// and the last completed day. Only the contrarian rules keep them.
	Session     Session
	PrevSession Session

	started bool
}

// Flat reports whether no position is open.
func (s State) Flat() bool { return s.Pos == nil }

// BarContext is one bar plus the lookahead facts the rules need.
type BarContext struct {
	Bar        market.Bar
	LastOfDay  bool
	LastOfFeed bool
}

// Event describes what a step did, for logging and counters.
type Event struct {
	NewDay     bool
	SkippedDay bool
	Entered    bool
	Breakeven  bool
	Trade      *Trade

	// Entry is the position opened on this bar. It may already be closed
	// again in Trade.
	Entry *Position
}

// Strategy is one rule set folded over the feed by the Simulator.
type Strategy interface {
	Step(st State, bc BarContext) (State, Event)
}

// NewStrategy returns the rules selected by cfg.Kind.
func NewStrategy(cfg Config, levels *market.LevelTable) Strategy {
	if cfg.IsContrarian() {
		return NewContrarianRules(cfg)
	}
	return NewRules(cfg, levels)
}

// Rules hold the run configuration. Step is a pure function of its
// arguments; the caller threads State through the fold.
type Rules struct {
	cfg    Config
	stop   StopPolicy
	levels *market.LevelTable
}

func NewRules(cfg Config, levels *market.LevelTable) Rules {
	return Rules{cfg: cfg, stop: cfg.StopPolicy(), levels: levels}
}

// Step advances the state machine by one bar.
//
// An open position is managed first: breakeven trail, stop, target date,
// end of feed. Only a book that was flat at the start of the bar may
// enter, so a position never opens on the bar another one closed.
func (r Rules) Step(st State, bc BarContext) (State, Event) {
	var ev Event
	b := bc.Bar
	d := b.Date()

	if !st.started || d != st.Day.Date {
		st.started = true
		st.Day = r.openDay(d, b.DOW)
		ev.NewDay = true
		ev.SkippedDay = !st.Day.Levels.Complete()
	}

	flat := st.Pos == nil
	if !flat {
		pos, trade, moved := r.manage(*st.Pos, bc)
		ev.Breakeven = moved
		if trade != nil {
			ev.Trade = trade
			st.Pos = nil
		} else {
			st.Pos = &pos
		}
	}

	if st.Day.Tradable && st.Day.HasPrev {
		sig := DetectSignal(st.Day.PrevClose, b.Close, st.Day.Levels, st.Day.Fired)
		if sig != NoSide {
			st.Day.Fired = st.Day.Fired.Mark(sig)
			if flat && !st.Day.Entered && r.canEnter(bc) {
				pos := r.open(sig, b, d, st.Day.Levels)
				st.Pos = &pos
				st.Day.Entered = true
				ev.Entered = true
				ev.Entry = &pos
			}
		}
	}

	st.Day.PrevClose = b.Close
	st.Day.HasPrev = true
	return st, ev
}

func (r Rules) openDay(d market.Date, dow time.Weekday) DayState {
	lv, _ := r.levels.Lookup(d)
	return DayState{
		Date:     d,
		Levels:   lv,
		Tradable: lv.Complete() && r.dowAllowed(dow),
	}
}

// dowAllowed applies the weekday filter: 1 = Monday ... 5 = Friday.
func (r Rules) dowAllowed(dow time.Weekday) bool {
	return r.cfg.DOWFilter == 0 || int(dow) == r.cfg.DOWFilter
}

// canEnter refuses entries that could not be managed on a later bar: the
// last bar of the feed, and the last bar of the day for same-day holds.
func (r Rules) canEnter(bc BarContext) bool {
	if bc.LastOfFeed {
		return false
	}
	if bc.LastOfDay && r.cfg.HoldingDays == 0 {
		return false
	}
	return true
}

func (r Rules) open(side Side, b market.Bar, d market.Date, lv market.DailyLevels) Position {
	stop := r.stop.InitialStop(side, b.Close, lv)
	return Position{
		Side:           side,
		EntryTime:      b.Time,
		EntryPrice:     b.Close,
		EntryDate:      d,
		Stop:           stop,
		InitialStop:    stop,
		TargetExitDate: d.AddDays(r.cfg.HoldingDays),
	}
}

func (r Rules) manage(p Position, bc BarContext) (Position, *Trade, bool) {
	b := bc.Bar
	moved := false

	if r.cfg.TrailPoints > 0 && p.stopBelowBreakeven() && p.Profit(b.Close) >= r.cfg.TrailPoints {
		p.Stop = p.EntryPrice
		moved = true
	}

	var reason ExitReason
	switch {
	case p.StopHit(b.Close):
		reason = ExitStopLoss
	case bc.LastOfDay && !b.Date().Before(p.TargetExitDate):
		reason = TargetReason(r.cfg.HoldingDays)
	case bc.LastOfFeed:
		reason = ExitEndOfPeriod
	default:
		return p, nil, moved
	}

	t := closeTrade(p, b.Time, b.Close, reason, r.cfg.ContractMultiplier)
	return p, &t, moved
}
