package backtest

import (
	"github.com/rustyeddy/rangetrader/market"
)

// StopPolicy computes the initial stop for a new position. One policy is
// used for a whole run.
type StopPolicy interface {
	InitialStop(side Side, entry float64, lv market.DailyLevels) float64
	// Tag is a short label used in file names.
	Tag() string
}

// RangeStop uses the day's precomputed long_stop / short_stop.
type RangeStop struct{}

func (RangeStop) InitialStop(side Side, _ float64, lv market.DailyLevels) float64 {
	if side == Long {
		return lv.LongStop.Value
	}
	return lv.ShortStop.Value
}

func (RangeStop) Tag() string { return "range" }

// FixedStop places the stop a fixed currency amount away from entry.
type FixedStop struct {
	Currency   float64
	Multiplier float64
}

// Points is the stop distance in price points.
func (f FixedStop) Points() float64 {
	return f.Currency / f.Multiplier
}

func (f FixedStop) InitialStop(side Side, entry float64, _ market.DailyLevels) float64 {
	return entry - float64(side)*f.Points()
}

func (f FixedStop) Tag() string { return "fixed" + num(f.Currency) }
