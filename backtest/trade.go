package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/rangetrader/market"
)

// Position is the single open trade. Stop only ever moves toward
// EntryPrice.
type Position struct {
	Side           Side
	EntryTime      time.Time
	EntryPrice     float64
	EntryDate      market.Date
	Stop           float64
	InitialStop    float64
	TargetExitDate market.Date

	// Target is a profit-taking price; 0 when the rules have none.
	Target float64
}

// Profit is the unrealized result in points at price.
func (p Position) Profit(price float64) float64 {
	return float64(p.Side) * (price - p.EntryPrice)
}

// StopHit reports whether close has reached the stop.
func (p Position) StopHit(close float64) bool {
	if p.Side == Long {
		return close <= p.Stop
	}
	return close >= p.Stop
}

// stopBelowBreakeven is true while the stop still sits on the losing side
// of the entry price.
func (p Position) stopBelowBreakeven() bool {
	if p.Side == Long {
		return p.Stop < p.EntryPrice
	}
	return p.Stop > p.EntryPrice
}

// Trade is a closed position.
type Trade struct {
	Date            market.Date
	DOW             time.Weekday
	Side            Side
	EntryTime       time.Time
	EntryPrice      float64
	ExitTime        time.Time
	ExitPrice       float64
	ExitReason      ExitReason
	PnLPoints       float64
	PnLCurrency     float64
	DurationMinutes float64
	StopLevel       float64
	InitialStop     float64
}

func (t Trade) Win() bool { return t.PnLPoints > 0 }

// closeTrade turns p into a Trade. Points and currency are rounded to
// cents and duration to a tenth of a minute.
func closeTrade(p Position, exitTime time.Time, exitPrice float64, reason ExitReason, multiplier float64) Trade {
	points := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(p.EntryPrice))
	if p.Side == Short {
		points = points.Neg()
	}
	cash := points.Mul(decimal.NewFromFloat(multiplier))
	minutes := decimal.NewFromFloat(exitTime.Sub(p.EntryTime).Minutes())

	return Trade{
		Date:            p.EntryDate,
		DOW:             p.EntryDate.Weekday(),
		Side:            p.Side,
		EntryTime:       p.EntryTime,
		EntryPrice:      p.EntryPrice,
		ExitTime:        exitTime,
		ExitPrice:       exitPrice,
		ExitReason:      reason,
		PnLPoints:       points.Round(2).InexactFloat64(),
		PnLCurrency:     cash.Round(2).InexactFloat64(),
		DurationMinutes: minutes.Round(1).InexactFloat64(),
		StopLevel:       p.Stop,
		InitialStop:     p.InitialStop,
	}
}

// Ledger is the append-only list of closed trades in exit order.
type Ledger []Trade

// EnrichedBar is a bar with the entry and exit markers of any trade that
// opened or closed on it.
type EnrichedBar struct {
	market.Bar

	HasEntry   bool
	EntryTime  time.Time
	EntryPrice float64
	Side       Side

	HasExit   bool
	ExitTime  time.Time
	ExitPrice float64
}

// Enrich joins trades back onto the feed by timestamp. The input is not
// modified.
func Enrich(bars market.Bars, trades []Trade) []EnrichedBar {
	entries := make(map[int64]Trade, len(trades))
	exits := make(map[int64]Trade, len(trades))
	for _, t := range trades {
		entries[t.EntryTime.UnixNano()] = t
		exits[t.ExitTime.UnixNano()] = t
	}

	out := make([]EnrichedBar, len(bars))
	for i, b := range bars {
		eb := EnrichedBar{Bar: b}
		key := b.Time.UnixNano()
		if t, ok := entries[key]; ok {
			eb.HasEntry = true
			eb.EntryTime = t.EntryTime
			eb.EntryPrice = t.EntryPrice
			eb.Side = t.Side
		}
		if t, ok := exits[key]; ok {
			eb.HasExit = true
			eb.ExitTime = t.ExitTime
			eb.ExitPrice = t.ExitPrice
		}
		out[i] = eb
	}
	return out
}
