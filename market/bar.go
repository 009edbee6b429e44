package market

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnsorted           = errors.New("bars are not in time order")
	ErrDuplicateTimestamp = errors.New("duplicate bar timestamp")
)

// Bar is one OHLC observation. DOW is the day-of-week tag carried by the
// feed; it normally equals Time.Weekday().
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	DOW    time.Weekday
}

func (b Bar) Date() Date { return DateOf(b.Time) }

// Bars is a time ordered feed.
type Bars []Bar

// Validate checks that timestamps strictly increase.
func (bs Bars) Validate() error {
	for i := 1; i < len(bs); i++ {
		prev, cur := bs[i-1].Time, bs[i].Time
		if cur.Equal(prev) {
			return fmt.Errorf("bar %d at %s: %w", i, cur.Format(time.RFC3339), ErrDuplicateTimestamp)
		}
		if cur.Before(prev) {
			return fmt.Errorf("bar %d at %s: %w", i, cur.Format(time.RFC3339), ErrUnsorted)
		}
	}
	return nil
}

// LastOfDay reports whether bar i is the final bar of its calendar day.
func (bs Bars) LastOfDay(i int) bool {
	if i == len(bs)-1 {
		return true
	}
	return bs[i+1].Date() != bs[i].Date()
}

// Split cuts the feed into consecutive runs of whole days, each no longer
// than days trading days.
func (bs Bars) Split(days int) []Bars {
	if days <= 0 || len(bs) == 0 {
		return []Bars{bs}
	}
	var (
		out   []Bars
		start int
		seen  int
	)
	for i := range bs {
		if i > 0 && bs[i].Date() != bs[i-1].Date() {
			seen++
			if seen == days {
				out = append(out, bs[start:i])
				start, seen = i, 0
			}
		}
	}
	return append(out, bs[start:])
}

// DayName returns the lower-case English weekday name.
func DayName(w time.Weekday) string {
	return strings.ToLower(w.String())
}

// ParseWeekday accepts full or three-letter English names, any case.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := DayName(d)
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("bad weekday %q", s)
}
