package journal

import (
	"time"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/market"
)

var jan8 = market.Date{Year: 2024, Month: time.January, Day: 8}

func at(d market.Date, hh, mm int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hh, mm, 0, 0, time.UTC)
}

func trade(d market.Date, side backtest.Side, entry, exit float64, reason backtest.ExitReason) backtest.Trade {
	pts := exit - entry
	if side == backtest.Short {
		pts = -pts
	}
	return backtest.Trade{
		Date:            d,
		DOW:             d.Weekday(),
		Side:            side,
		EntryTime:       at(d, 9, 35),
		EntryPrice:      entry,
		ExitTime:        at(d, 15, 59),
		ExitPrice:       exit,
		ExitReason:      reason,
		PnLPoints:       pts,
		PnLCurrency:     pts * 50,
		DurationMinutes: 384,
		StopLevel:       entry - float64(side)*10,
		InitialStop:     entry - float64(side)*10,
	}
}

// sampleTrades: +100, -50, -25, +200, 0
func sampleTrades() []backtest.Trade {
	return []backtest.Trade{
		trade(jan8, backtest.Long, 4000, 4002, backtest.ExitEndOfDay),
		trade(jan8.AddDays(1), backtest.Short, 4010, 4011, backtest.ExitStopLoss),
		trade(jan8.AddDays(2), backtest.Long, 4005.25, 4004.75, backtest.ExitStopLoss),
		trade(jan8.AddDays(3), backtest.Long, 3990, 3994, backtest.ExitEndOfDay),
		trade(jan8.AddDays(4), backtest.Short, 4001.5, 4001.5, backtest.ExitEndOfPeriod),
	}
}
