package backtest

import (
	"errors"
	"fmt"
	"strings"
)

// Side: +1 long, -1 short, 0 none
type Side int8

const (
	NoSide Side = 0
	Long   Side = +1
	Short  Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return ""
}

var ErrMissingSide = errors.New("missing side")

// ParseSide also accepts the BUY/SELL spelling of older ledgers. A blank
// side is an error: every recorded trade has a direction.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return Long, nil
	case "SHORT", "SELL":
		return Short, nil
	case "":
		return NoSide, ErrMissingSide
	}
	return NoSide, fmt.Errorf("bad side %q", s)
}

// ExitReason names why a position was closed.
type ExitReason string

const (
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitEndOfDay    ExitReason = "END_OF_DAY"
	ExitEndOfPeriod ExitReason = "END_OF_PERIOD"
	// ExitTarget is the contrarian profit target.
	ExitTarget ExitReason = "TARGET"
)

// TargetReason is END_OF_DAY for same-day holds and TARGET_PROFIT_{N}D
// otherwise.
func TargetReason(holdingDays int) ExitReason {
	if holdingDays == 0 {
		return ExitEndOfDay
	}
	return ExitReason(fmt.Sprintf("TARGET_PROFIT_%dD", holdingDays))
}
