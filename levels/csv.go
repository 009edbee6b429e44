package levels

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rustyeddy/rangetrader/market"
)

var csvHeader = []string{
	"date", "dow", "open", "high", "low", "close", "volume",
	"range", "range_avg", "range_enter", "range_stop",
	"long_level", "short_level", "long_stop", "short_stop",
}

// WriteCSV writes days in the layout backtest.LoadLevels reads back.
// Undefined levels are empty cells.
func WriteCSV(w io.Writer, days []Day) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range days {
		row := []string{
			d.Date.String(),
			market.DayName(d.DOW()),
			ff(d.Open), ff(d.High), ff(d.Low), ff(d.Close), ff(d.Volume),
			ff(d.Range), ff(d.RangeAvg), ff(d.RangeEnter), ff(d.RangeStop),
			fl(d.LongEntry), fl(d.ShortEntry), fl(d.LongStop), fl(d.ShortStop),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path, creating parent directories.
func SaveCSV(path string, days []Day) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, days); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ff(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }

func fl(l market.Level) string {
	if !l.Valid {
		return ""
	}
	return ff(l.Value)
}
