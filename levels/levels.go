// Package levels derives the daily entry and stop table from minute bars.
//
// Each day's levels come from that day's open and the previous day's
// average range:
//
//	long_entry  = open + range_enter[prev]
//	short_entry = open - range_enter[prev]
//	long_stop   = open - range_stop[prev]
//	short_stop  = open + range_stop[prev]
//
// range_enter and range_stop scale the rolling mean of high-low.
package levels

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/rangetrader/indicators"
	"github.com/rustyeddy/rangetrader/market"
)

var ErrInvalidParams = errors.New("invalid level parameters")

// Params control the range computation.
type Params struct {
	Expansion      float64 `json:"expansion" yaml:"expansion"`
	StopMultiplier float64 `json:"stop_multiplier" yaml:"stop_multiplier"`
	Lookback       int     `json:"lookback" yaml:"lookback"`
}

func DefaultParams() Params {
	return Params{
		Expansion:      0.4,
		StopMultiplier: 2.5,
		Lookback:       3,
	}
}

func (p Params) Validate() error {
	if p.Expansion <= 0 {
		return fmt.Errorf("%w: expansion must be > 0", ErrInvalidParams)
	}
	if p.StopMultiplier <= 0 {
		return fmt.Errorf("%w: stop_multiplier must be > 0", ErrInvalidParams)
	}
	if p.Lookback < 1 {
		return fmt.Errorf("%w: lookback must be >= 1", ErrInvalidParams)
	}
	return nil
}

// DailyBar aggregates one calendar day of minute bars.
type DailyBar struct {
	Date   market.Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func (d DailyBar) DOW() time.Weekday { return d.Date.Weekday() }

// Resample groups bars by calendar day: first open, max high, min low,
// last close, summed volume. Days without bars do not appear.
func Resample(bars market.Bars) []DailyBar {
	var out []DailyBar
	for _, b := range bars {
		d := b.Date()
		if n := len(out); n > 0 && out[n-1].Date == d {
			cur := &out[n-1]
			cur.High = max(cur.High, b.High)
			cur.Low = min(cur.Low, b.Low)
			cur.Close = b.Close
			cur.Volume += b.Volume
			continue
		}
		out = append(out, DailyBar{Date: d, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume})
	}
	return out
}

// Day is one row of the daily level table.
type Day struct {
	DailyBar
	Range      float64
	RangeAvg   float64
	RangeEnter float64
	RangeStop  float64
	LongEntry  market.Level
	ShortEntry market.Level
	LongStop   market.Level
	ShortStop  market.Level
}

// Build computes the level table. Sunday sessions count toward the rolling
// range and the previous-day lookup, then are left out of the result.
func Build(bars market.Bars, p Params) ([]Day, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := bars.Validate(); err != nil {
		return nil, err
	}

	daily := Resample(bars)
	ranges := make([]float64, len(daily))
	for i, d := range daily {
		ranges[i] = d.High - d.Low
	}
	avgs, err := indicators.RollingMean(ranges, p.Lookback)
	if err != nil {
		return nil, err
	}

	all := make([]Day, len(daily))
	for i, d := range daily {
		day := Day{
			DailyBar:   d,
			Range:      round2(ranges[i]),
			RangeAvg:   round2(avgs[i]),
			RangeEnter: round2(avgs[i] * p.Expansion),
			RangeStop:  round2(avgs[i] * p.StopMultiplier),
		}
		if i > 0 {
			prev := all[i-1]
			day.LongEntry = market.Defined(round2(d.Open + prev.RangeEnter))
			day.ShortEntry = market.Defined(round2(d.Open - prev.RangeEnter))
			day.LongStop = market.Defined(round2(d.Open - prev.RangeStop))
			day.ShortStop = market.Defined(round2(d.Open + prev.RangeStop))
		}
		all[i] = day
	}

	out := all[:0:0]
	for _, d := range all {
		if d.DOW() != time.Sunday {
			out = append(out, d)
		}
	}
	return out, nil
}

// Table converts built days into the lookup used by the simulator.
func Table(days []Day) *market.LevelTable {
	rows := make([]market.DailyLevels, len(days))
	for i, d := range days {
		rows[i] = market.DailyLevels{
			Date:       d.Date,
			LongEntry:  d.LongEntry,
			ShortEntry: d.ShortEntry,
			LongStop:   d.LongStop,
			ShortStop:  d.ShortStop,
		}
	}
	return market.NewLevelTable(rows)
}

func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
