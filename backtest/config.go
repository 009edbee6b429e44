package backtest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/rangetrader/market"
)

var ErrInvalidConfig = errors.New("invalid backtest config")

// Rule sets selected by Config.Kind.
const (
	KindBreakout   = "breakout"
	KindContrarian = "contrarian"
)

// ContraConfig parameterizes the contrarian rules, in price points.
type ContraConfig struct {
	// MinRange is the previous-day high-low range that must be exceeded
	// before the day is traded.
	MinRange     float64 `json:"min_range" yaml:"min_range"`
	StopPoints   float64 `json:"stop_points" yaml:"stop_points"`
	TargetPoints float64 `json:"target_points" yaml:"target_points"`
}

// Config is the single parameter record for one run.
type Config struct {
	// Kind is "breakout" (the default when empty) or "contrarian".
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// DOWFilter restricts new entries to one weekday: 0 = any day,
	// 1 = Monday ... 5 = Friday.
	DOWFilter int `json:"dow_filter" yaml:"dow_filter"`

	UseFixedStop      bool    `json:"use_fixed_stop" yaml:"use_fixed_stop"`
	FixedStopCurrency float64 `json:"fixed_stop_currency" yaml:"fixed_stop_currency"`

	// TrailPoints is the unrealized profit that moves the stop to
	// breakeven. 0 disables the trail.
	TrailPoints float64 `json:"trail_points" yaml:"trail_points"`

	// HoldingDays is how many calendar days after entry the position is
	// closed at the last bar of the day. 0 closes on the entry day.
	HoldingDays int `json:"holding_days" yaml:"holding_days"`

	ContractMultiplier float64 `json:"contract_multiplier" yaml:"contract_multiplier"`

	DateRange market.DateRange `json:"date_range" yaml:"date_range"`

	Contra ContraConfig `json:"contrarian" yaml:"contrarian"`
}

// DefaultConfig matches the ES setup: $50 a point, range stops, same-day
// exits.
func DefaultConfig() Config {
	return Config{
		ContractMultiplier: 50,
		FixedStopCurrency:  500,
		Contra: ContraConfig{
			MinRange:     100,
			StopPoints:   50,
			TargetPoints: 100,
		},
	}
}

// IsContrarian reports whether the contrarian rules are selected.
func (c Config) IsContrarian() bool { return c.Kind == KindContrarian }

// StrategyName is the name recorded with each run.
func (c Config) StrategyName() string {
	if c.IsContrarian() {
		return "contrarian_volatility"
	}
	return "range_breakout"
}

// Splittable reports whether a feed can be cut into day ranges that are
// simulated independently with the same trades as one run. Breakout
// positions held past the entry day would be force-closed at a range end,
// and the contrarian rules need the day before each range.
func (c Config) Splittable() bool {
	return !c.IsContrarian() && c.HoldingDays == 0
}

func (c Config) Validate() error {
	switch c.Kind {
	case "", KindBreakout:
	case KindContrarian:
		if err := c.Contra.validate(); err != nil {
			return err
		}
		if c.HoldingDays != 0 || c.TrailPoints != 0 || c.UseFixedStop {
			return fmt.Errorf("%w: contrarian rules exit the same day on their own stop and target; holding_days, trail_points and use_fixed_stop must be unset", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: kind must be %q or %q, got %q", ErrInvalidConfig, KindBreakout, KindContrarian, c.Kind)
	}
	if c.DOWFilter < 0 || c.DOWFilter > 5 {
		return fmt.Errorf("%w: dow_filter must be 0..5, got %d", ErrInvalidConfig, c.DOWFilter)
	}
	if c.HoldingDays < 0 {
		return fmt.Errorf("%w: holding_days must be >= 0, got %d", ErrInvalidConfig, c.HoldingDays)
	}
	if c.ContractMultiplier <= 0 {
		return fmt.Errorf("%w: contract_multiplier must be positive", ErrInvalidConfig)
	}
	if c.TrailPoints < 0 {
		return fmt.Errorf("%w: trail_points must be >= 0", ErrInvalidConfig)
	}
	if c.UseFixedStop && c.FixedStopCurrency <= 0 {
		return fmt.Errorf("%w: fixed_stop_currency must be positive when use_fixed_stop is set", ErrInvalidConfig)
	}
	if err := c.DateRange.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c ContraConfig) validate() error {
	if c.MinRange < 0 {
		return fmt.Errorf("%w: contrarian min_range must be >= 0", ErrInvalidConfig)
	}
	if c.StopPoints <= 0 || c.TargetPoints <= 0 {
		return fmt.Errorf("%w: contrarian stop_points and target_points must be positive", ErrInvalidConfig)
	}
	return nil
}

// StopPolicy returns the stop-loss policy selected by the config.
func (c Config) StopPolicy() StopPolicy {
	if c.UseFixedStop {
		return FixedStop{Currency: c.FixedStopCurrency, Multiplier: c.ContractMultiplier}
	}
	return RangeStop{}
}

// LedgerFileName encodes the run parameters so runs never overwrite each
// other, e.g. tracking_record_fixed500_trail2_hold1d_dow3_20220101_20220331.csv.
func (c Config) LedgerFileName(from, to market.Date) string {
	return c.fileStem("tracking_record", from, to) + ".csv"
}

// EnrichedFileName is the companion file for the bar feed with trade markers.
func (c Config) EnrichedFileName(from, to market.Date) string {
	return c.fileStem("bars_with_trades", from, to) + ".csv"
}

func (c Config) fileStem(prefix string, from, to market.Date) string {
	parts := []string{prefix, c.StopPolicy().Tag(), "trail" + num(c.TrailPoints), fmt.Sprintf("hold%dd", c.HoldingDays)}
	if c.IsContrarian() {
		parts = []string{prefix, "contra", "stop" + num(c.Contra.StopPoints), "target" + num(c.Contra.TargetPoints), "range" + num(c.Contra.MinRange)}
	}
	if c.DOWFilter != 0 {
		parts = append(parts, fmt.Sprintf("dow%d", c.DOWFilter))
	}
	parts = append(parts, dateOrAll(from), dateOrAll(to))
	return strings.Join(parts, "_")
}

func num(x float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(x, 'f', -1, 64), ".", "p")
}

func dateOrAll(d market.Date) string {
	if d.IsZero() {
		return "all"
	}
	return d.Compact()
}
