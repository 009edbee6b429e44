package market

import (
	"math"
	"sort"
)

// Level is a price that may be undefined for a day.
type Level struct {
	Value float64
	Valid bool
}

// Defined wraps a known price. NaN and infinities stay undefined.
func Defined(v float64) Level {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Level{}
	}
	return Level{Value: v, Valid: true}
}

// DailyLevels are the entry and stop prices for one trading day.
type DailyLevels struct {
	Date       Date
	LongEntry  Level
	ShortEntry Level
	LongStop   Level
	ShortStop  Level
}

// Complete is true when all four levels are defined. Only complete days
// accept new entries.
func (l DailyLevels) Complete() bool {
	return l.LongEntry.Valid && l.ShortEntry.Valid && l.LongStop.Valid && l.ShortStop.Valid
}

// LevelTable indexes DailyLevels by date.
type LevelTable struct {
	byDate map[Date]DailyLevels
}

// NewLevelTable builds a table; a later row for the same date replaces an
// earlier one.
func NewLevelTable(rows []DailyLevels) *LevelTable {
	t := &LevelTable{byDate: make(map[Date]DailyLevels, len(rows))}
	for _, r := range rows {
		t.byDate[r.Date] = r
	}
	return t
}

// Lookup returns the record for d. A missing date yields an empty, not
// complete, record.
func (t *LevelTable) Lookup(d Date) (DailyLevels, bool) {
	if t == nil {
		return DailyLevels{Date: d}, false
	}
	l, ok := t.byDate[d]
	if !ok {
		return DailyLevels{Date: d}, false
	}
	return l, true
}

func (t *LevelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byDate)
}

// Rows returns all records in date order.
func (t *LevelTable) Rows() []DailyLevels {
	if t == nil {
		return nil
	}
	out := make([]DailyLevels, 0, len(t.byDate))
	for _, r := range t.byDate {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
