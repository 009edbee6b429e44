package backtest

import (
	"github.com/rustyeddy/rangetrader/market"
)

// Session is the open, high and low of one trading day so far.
type Session struct {
	Date  market.Date
	Open  float64
	High  float64
	Low   float64
	Valid bool
}

func (s Session) Range() float64 { return s.High - s.Low }

func (s Session) extend(b market.Bar) Session {
	s.High = max(s.High, b.High)
	s.Low = min(s.Low, b.Low)
	return s
}

// ContrarianRules fade the previous day's extremes after a wide day.
//
// A day is traded only when the previous trading day's high-low range
// exceeds Contra.MinRange. An open above the previous high sells at the
// open and an open below the previous low buys at the open. Otherwise the
// first bar whose high reaches the previous high sells there, or whose low
// reaches the previous low buys there. Stop and target sit a fixed number
// of points from entry and are checked against each bar's high and low,
// the entry bar included, stop first. Anything still open closes at the
// last bar of the day.
type ContrarianRules struct {
	cfg Config
}

func NewContrarianRules(cfg Config) ContrarianRules {
	return ContrarianRules{cfg: cfg}
}

func (r ContrarianRules) Step(st State, bc BarContext) (State, Event) {
	var ev Event
	b := bc.Bar
	d := b.Date()

	if !st.started || d != st.Day.Date {
		if st.started {
			st.PrevSession = st.Session
		}
		st.started = true
		st.Session = Session{Date: d, Open: b.Open, High: b.High, Low: b.Low, Valid: true}
		st.Day = DayState{Date: d, Tradable: r.tradable(st.PrevSession, b)}
		ev.NewDay = true
		ev.SkippedDay = !st.Day.Tradable
	} else {
		st.Session = st.Session.extend(b)
	}

	if st.Pos != nil {
		if t := r.manage(*st.Pos, bc); t != nil {
			ev.Trade = t
			st.Pos = nil
		}
		return st, ev
	}

	if !st.Day.Tradable || st.Day.Entered {
		return st, ev
	}
	side, price, ok := r.entry(st.PrevSession, st.Session.Open, b, ev.NewDay)
	if !ok {
		return st, ev
	}

	pos := r.open(side, price, b, d)
	st.Day.Entered = true
	ev.Entered = true
	ev.Entry = &pos
	if t := r.manage(pos, bc); t != nil {
		ev.Trade = t
		return st, ev
	}
	st.Pos = &pos
	return st, ev
}

func (r ContrarianRules) tradable(prev Session, b market.Bar) bool {
	if !prev.Valid || prev.Range() <= r.cfg.Contra.MinRange {
		return false
	}
	return r.cfg.DOWFilter == 0 || int(b.DOW) == r.cfg.DOWFilter
}

// entry finds the fade for bar b. Gap entries only happen on the first bar
// of the day; an open inside the previous range waits for a touch.
func (r ContrarianRules) entry(prev Session, open float64, b market.Bar, firstBar bool) (Side, float64, bool) {
	switch {
	case open > prev.High:
		if firstBar {
			return Short, b.Open, true
		}
	case open < prev.Low:
		if firstBar {
			return Long, b.Open, true
		}
	case b.High >= prev.High:
		return Short, prev.High, true
	case b.Low <= prev.Low:
		return Long, prev.Low, true
	}
	return NoSide, 0, false
}

func (r ContrarianRules) open(side Side, price float64, b market.Bar, d market.Date) Position {
	c := r.cfg.Contra
	stop := price - float64(side)*c.StopPoints
	return Position{
		Side:           side,
		EntryTime:      b.Time,
		EntryPrice:     price,
		EntryDate:      d,
		Stop:           stop,
		InitialStop:    stop,
		TargetExitDate: d,
		Target:         price + float64(side)*c.TargetPoints,
	}
}

// manage exits at the stop or target price when the bar's range reaches
// it, and at the close on the last bar of the day.
func (r ContrarianRules) manage(p Position, bc BarContext) *Trade {
	b := bc.Bar
	var (
		price  float64
		reason ExitReason
	)
	switch {
	case p.Side == Long && b.Low <= p.Stop, p.Side == Short && b.High >= p.Stop:
		price, reason = p.Stop, ExitStopLoss
	case p.Side == Long && b.High >= p.Target, p.Side == Short && b.Low <= p.Target:
		price, reason = p.Target, ExitTarget
	case bc.LastOfDay || bc.LastOfFeed:
		price, reason = b.Close, ExitEndOfDay
	default:
		return nil
	}
	t := closeTrade(p, b.Time, price, reason, r.cfg.ContractMultiplier)
	return &t
}
