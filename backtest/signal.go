package backtest

import (
	"github.com/rustyeddy/rangetrader/market"
)

// Fired records which directions have already seen their first crossing
// on the current day.
type Fired struct {
	Long  bool
	Short bool
}

// Mark returns f with side's flag set.
func (f Fired) Mark(side Side) Fired {
	switch side {
	case Long:
		f.Long = true
	case Short:
		f.Short = true
	}
	return f
}

// DetectSignal looks for a crossover of long_entry or a crossunder of
// short_entry between two consecutive closes. Directions already fired
// today are skipped. When both fire on the same bar LONG wins.
func DetectSignal(prevClose, close float64, lv market.DailyLevels, fired Fired) Side {
	if !fired.Long && lv.LongEntry.Valid {
		le := lv.LongEntry.Value
		if prevClose <= le && le < close {
			return Long
		}
	}
	if !fired.Short && lv.ShortEntry.Valid {
		se := lv.ShortEntry.Value
		if prevClose >= se && se > close {
			return Short
		}
	}
	return NoSide
}
