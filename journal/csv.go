package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/market"
)

// LedgerHeader is the column order of the persisted ledger.
var LedgerHeader = []string{
	"date", "dow", "side",
	"entry_time", "entry_price",
	"exit_time", "exit_price", "exit_reason",
	"pnl_points", "pnl_currency", "duration_minutes", "stop_level",
}

var enrichedHeader = []string{
	"time", "open", "high", "low", "close", "volume", "dow",
	"entry_time", "entry_price", "side", "exit_time", "exit_price",
}

// WriteLedger writes trades in ledger order. The same trades always
// produce the same bytes.
func WriteLedger(w io.Writer, trades []backtest.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write(ledgerRow(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ledgerRow(t backtest.Trade) []string {
	return []string{
		t.Date.String(),
		market.DayName(t.DOW),
		t.Side.String(),
		t.EntryTime.Format(time.RFC3339),
		f(t.EntryPrice),
		t.ExitTime.Format(time.RFC3339),
		f(t.ExitPrice),
		string(t.ExitReason),
		fixed(t.PnLPoints, 2),
		fixed(t.PnLCurrency, 2),
		fixed(t.DurationMinutes, 1),
		f(t.StopLevel),
	}
}

// ReadLedger parses a ledger written by WriteLedger. The initial stop is
// not part of the file and reads back as zero.
func ReadLedger(r io.Reader) ([]backtest.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, h := range LedgerHeader {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("ledger: missing %s column", h)
		}
	}

	var out []backtest.Trade
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseLedgerRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseLedgerRow(row []string, idx map[string]int) (backtest.Trade, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		t   backtest.Trade
		err error
	)
	if t.Date, err = market.ParseDate(get("date")); err != nil {
		return t, err
	}
	if t.DOW, err = market.ParseWeekday(get("dow")); err != nil {
		return t, err
	}
	if t.Side, err = backtest.ParseSide(get("side")); err != nil {
		return t, err
	}
	if t.EntryTime, err = market.ParseTime(get("entry_time")); err != nil {
		return t, err
	}
	if t.ExitTime, err = market.ParseTime(get("exit_time")); err != nil {
		return t, err
	}
	t.ExitReason = backtest.ExitReason(get("exit_reason"))

	for _, p := range []struct {
		col string
		dst *float64
	}{
		{"entry_price", &t.EntryPrice},
		{"exit_price", &t.ExitPrice},
		{"pnl_points", &t.PnLPoints},
		{"pnl_currency", &t.PnLCurrency},
		{"duration_minutes", &t.DurationMinutes},
		{"stop_level", &t.StopLevel},
	} {
		v := get(p.col)
		if *p.dst, err = strconv.ParseFloat(v, 64); err != nil {
			return t, fmt.Errorf("bad %s %q: %w", p.col, v, err)
		}
	}
	return t, nil
}

// SaveLedger writes the ledger to path, creating parent directories.
func SaveLedger(path string, trades []backtest.Trade) error {
	return writeFile(path, func(w io.Writer) error { return WriteLedger(w, trades) })
}

func LoadLedger(path string) ([]backtest.Trade, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	trades, err := ReadLedger(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trades, nil
}

// WriteEnriched writes the feed with entry and exit markers. Cells are
// empty on bars without a marker.
func WriteEnriched(w io.Writer, bars []backtest.EnrichedBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(enrichedHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.Format(time.RFC3339),
			f(b.Open), f(b.High), f(b.Low), f(b.Close), f(b.Volume),
			market.DayName(b.DOW),
			"", "", "", "", "",
		}
		if b.HasEntry {
			row[7] = b.EntryTime.Format(time.RFC3339)
			row[8] = f(b.EntryPrice)
			row[9] = b.Side.String()
		}
		if b.HasExit {
			row[10] = b.ExitTime.Format(time.RFC3339)
			row[11] = f(b.ExitPrice)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SaveEnriched(path string, bars []backtest.EnrichedBar) error {
	return writeFile(path, func(w io.Writer) error { return WriteEnriched(w, bars) })
}

// CSVJournal writes one ledger file per run into Dir, named from the run
// configuration.
type CSVJournal struct {
	Dir string
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &CSVJournal{Dir: dir}, nil
}

// LedgerPath is where RecordRun writes the ledger for run.
func (j *CSVJournal) LedgerPath(run Run) string {
	r := run.Range()
	return filepath.Join(j.Dir, run.Config.LedgerFileName(r.From, r.To))
}

func (j *CSVJournal) RecordRun(_ context.Context, run Run, trades []backtest.Trade) error {
	return SaveLedger(j.LedgerPath(run), trades)
}

func (j *CSVJournal) Close() error { return nil }

func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(fh); err != nil {
		fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func fixed(x float64, places int32) string {
	return decimal.NewFromFloat(x).StringFixed(places)
}
