package journal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rangetrader/backtest"
	"github.com/rustyeddy/rangetrader/market"
)

func TestWriteLedger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, sampleTrades()[:2]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,dow,side,entry_time,entry_price,exit_time,exit_price,exit_reason,pnl_points,pnl_currency,duration_minutes,stop_level", lines[0])
	assert.Equal(t, "2024-01-08,monday,LONG,2024-01-08T09:35:00Z,4000,2024-01-08T15:59:00Z,4002,END_OF_DAY,2.00,100.00,384.0,3990", lines[1])
	assert.Equal(t, "2024-01-09,tuesday,SHORT,2024-01-09T09:35:00Z,4010,2024-01-09T15:59:00Z,4011,STOP_LOSS,-1.00,-50.00,384.0,4020", lines[2])
}

func TestWriteLedgerEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, nil))
	assert.Equal(t, strings.Join(LedgerHeader, ",")+"\n", buf.String())
}

func TestLedgerIdempotent(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	require.NoError(t, WriteLedger(&a, sampleTrades()))
	require.NoError(t, WriteLedger(&b, sampleTrades()))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestLedgerReadBack(t *testing.T) {
	t.Parallel()

	want := sampleTrades()
	path := filepath.Join(t.TempDir(), "out", "ledger.csv")
	require.NoError(t, SaveLedger(path, want))

	got, err := LoadLedger(path)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		w := want[i]
		assert.Equal(t, w.Date, got[i].Date)
		assert.Equal(t, w.Side, got[i].Side)
		assert.True(t, w.EntryTime.Equal(got[i].EntryTime))
		assert.True(t, w.ExitTime.Equal(got[i].ExitTime))
		assert.Equal(t, w.EntryPrice, got[i].EntryPrice)
		assert.Equal(t, w.ExitReason, got[i].ExitReason)
		assert.Equal(t, w.PnLCurrency, got[i].PnLCurrency)
		assert.Equal(t, w.StopLevel, got[i].StopLevel)
	}
	assert.Equal(t, Summarize(want), Summarize(got))
}

func TestReadLedgerErrors(t *testing.T) {
	t.Parallel()

	_, err := ReadLedger(strings.NewReader("date,dow,side\n"))
	assert.ErrorContains(t, err, "missing entry_time column")

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, sampleTrades()[:1]))
	bad := strings.Replace(buf.String(), "LONG", "UP", 1)
	_, err = ReadLedger(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")

	blank := strings.Replace(buf.String(), ",LONG,", ",,", 1)
	_, err = ReadLedger(strings.NewReader(blank))
	assert.ErrorIs(t, err, backtest.ErrMissingSide)
	assert.ErrorContains(t, err, "line 2")

	trades, err := ReadLedger(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestWriteEnriched(t *testing.T) {
	t.Parallel()

	tr := sampleTrades()[0]
	bars := market.Bars{
		{Time: tr.EntryTime, Open: 4000, High: 4000.5, Low: 3999.75, Close: 4000, Volume: 12, DOW: time.Monday},
		{Time: tr.EntryTime.Add(time.Minute), Open: 4000, High: 4001, Low: 4000, Close: 4001, DOW: time.Monday},
		{Time: tr.ExitTime, Open: 4001, High: 4002, Low: 4001, Close: 4002, DOW: time.Monday},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, backtest.Enrich(bars, []backtest.Trade{tr})))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,open,high,low,close,volume,dow,entry_time,entry_price,side,exit_time,exit_price", lines[0])
	assert.Equal(t, "2024-01-08T09:35:00Z,4000,4000.5,3999.75,4000,12,monday,2024-01-08T09:35:00Z,4000,LONG,,", lines[1])
	assert.Equal(t, "2024-01-08T09:36:00Z,4000,4001,4000,4001,0,monday,,,,,", lines[2])
	assert.Equal(t, "2024-01-08T15:59:00Z,4001,4002,4001,4002,0,monday,,,,2024-01-08T15:59:00Z,4002", lines[3])
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "results")
	j, err := NewCSV(dir)
	require.NoError(t, err)
	defer j.Close()

	cfg := backtest.DefaultConfig()
	cfg.TrailPoints = 2
	cfg.DateRange = market.DateRange{From: jan8, To: jan8.AddDays(4)}
	run := Run{RunID: "r1", Config: cfg}

	require.NoError(t, j.RecordRun(context.Background(), run, sampleTrades()))

	path := j.LedgerPath(run)
	assert.Equal(t, filepath.Join(dir, "tracking_record_range_trail2_hold0d_20240108_20240112.csv"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	got, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestCSVJournalOpenRangeUsesFeedDates(t *testing.T) {
	t.Parallel()

	j, err := NewCSV(t.TempDir())
	require.NoError(t, err)

	cfg := backtest.DefaultConfig()
	tests := []struct {
		name  string
		dr    market.DateRange
		start market.Date
		end   market.Date
		want  string
	}{
		{"open both ends", market.DateRange{}, jan8, jan8.AddDays(4), "tracking_record_range_trail0_hold0d_20240108_20240112.csv"},
		{"later feed", market.DateRange{}, jan8.AddDays(7), jan8.AddDays(8), "tracking_record_range_trail0_hold0d_20240115_20240116.csv"},
		{"open end", market.DateRange{From: jan8.AddDays(1)}, jan8.AddDays(1), jan8.AddDays(3), "tracking_record_range_trail0_hold0d_20240109_20240111.csv"},
		{"configured range wins", market.DateRange{From: jan8, To: jan8.AddDays(30)}, jan8.AddDays(2), jan8.AddDays(3), "tracking_record_range_trail0_hold0d_20240108_20240207.csv"},
		{"no bars", market.DateRange{}, market.Date{}, market.Date{}, "tracking_record_range_trail0_hold0d_all_all.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.DateRange = tt.dr
			run := Run{Config: c}
			if !tt.start.IsZero() {
				run.Start = at(tt.start, 9, 30)
				run.End = at(tt.end, 15, 59)
			}
			assert.Equal(t, filepath.Join(j.Dir, tt.want), j.LedgerPath(run))
		})
	}
}
