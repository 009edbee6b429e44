package backtest

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/rangetrader/market"
)

// LoadBars reads a minute-bar CSV:
//
//	date,open,high,low,close[,volume][,dow]
//
// The time column may be named date, time, timestamp or datetime. Files
// ending in .xz or .gz are decompressed. Bars outside r and Sunday bars
// are dropped. Any malformed row is fatal.
func LoadBars(path string, r market.DateRange) (market.Bars, error) {
	rc, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bars, err := ReadBars(rc, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// LoadAllBars reads a minute-bar file without the date filter and keeps
// Sunday bars. The level builder needs the whole session.
func LoadAllBars(path string) (market.Bars, error) {
	rc, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bars, err := readBars(rc, market.DateRange{}, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadBars is LoadBars over an already open reader.
func ReadBars(rd io.Reader, dr market.DateRange) (market.Bars, error) {
	return readBars(rd, dr, false)
}

func readBars(rd io.Reader, dr market.DateRange, keepSunday bool) (market.Bars, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := indexColumns(header)

	tcol, ok := cols.find("date", "time", "timestamp", "datetime")
	if !ok {
		return nil, fmt.Errorf("bars: no time column in header %v", header)
	}
	ocol, err := cols.require("open")
	if err != nil {
		return nil, err
	}
	hcol, err := cols.require("high")
	if err != nil {
		return nil, err
	}
	lcol, err := cols.require("low")
	if err != nil {
		return nil, err
	}
	ccol, err := cols.require("close")
	if err != nil {
		return nil, err
	}
	vcol, hasVol := cols.find("volume", "volumen")
	dcol, hasDOW := cols.find("dow", "day_of_week")

	var bars market.Bars
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		t, err := market.ParseTime(field(row, tcol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d := market.DateOf(t)
		if !dr.Contains(d) || (!keepSunday && t.Weekday() == time.Sunday) {
			continue
		}

		b := market.Bar{Time: t, DOW: t.Weekday()}
		for _, p := range []struct {
			col int
			dst *float64
		}{{ocol, &b.Open}, {hcol, &b.High}, {lcol, &b.Low}, {ccol, &b.Close}} {
			if *p.dst, err = parsePrice(field(row, p.col)); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if math.IsNaN(*p.dst) {
				return nil, fmt.Errorf("line %d: missing price", line)
			}
		}
		if hasVol {
			if v := field(row, vcol); v != "" {
				if b.Volume, err = strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("line %d: bad volume %q: %w", line, v, err)
				}
			}
		}
		if hasDOW {
			if v := field(row, dcol); v != "" {
				if b.DOW, err = market.ParseWeekday(v); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
		}
		bars = append(bars, b)
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

// LoadLevels reads the daily level table:
//
//	date,long_entry,short_entry,long_stop,short_stop
//
// long_level/short_level are accepted for the entry columns. Empty or NaN
// cells are undefined levels, not errors.
func LoadLevels(path string) (*market.LevelTable, error) {
	rc, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := ReadLevels(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func ReadLevels(rd io.Reader) (*market.LevelTable, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return market.NewLevelTable(nil), nil
	}
	if err != nil {
		return nil, err
	}
	cols := indexColumns(header)

	dcol, err := cols.require("date")
	if err != nil {
		return nil, err
	}
	le, ok := cols.find("long_entry", "long_level")
	if !ok {
		return nil, fmt.Errorf("levels: missing long_entry column")
	}
	se, ok := cols.find("short_entry", "short_level")
	if !ok {
		return nil, fmt.Errorf("levels: missing short_entry column")
	}
	ls, err := cols.require("long_stop")
	if err != nil {
		return nil, err
	}
	ss, err := cols.require("short_stop")
	if err != nil {
		return nil, err
	}

	var (
		rows []market.DailyLevels
		seen = map[market.Date]int{}
		line = 1
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		d, err := market.ParseDate(field(row, dcol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[d]; dup {
			return nil, fmt.Errorf("line %d: date %s already defined on line %d", line, d, prev)
		}
		seen[d] = line

		lv := market.DailyLevels{Date: d}
		for _, p := range []struct {
			col int
			dst *market.Level
		}{{le, &lv.LongEntry}, {se, &lv.ShortEntry}, {ls, &lv.LongStop}, {ss, &lv.ShortStop}} {
			v, err := parsePrice(field(row, p.col))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*p.dst = market.Defined(v)
		}
		rows = append(rows, lv)
	}
	return market.NewLevelTable(rows), nil
}

type columns map[string]int

func indexColumns(header []string) columns {
	c := columns{}
	for i, h := range header {
		c[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return c
}

func (c columns) find(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i, true
		}
	}
	return -1, false
}

func (c columns) require(name string) (int, error) {
	i, ok := c[name]
	if !ok {
		return -1, fmt.Errorf("missing %s column", name)
	}
	return i, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parsePrice maps empty and NaN cells to NaN.
func parsePrice(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", s, err)
	}
	return v, nil
}

type dataFile struct {
	io.Reader
	closers []io.Closer
}

func (d *dataFile) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openData opens path, decompressing .xz and .gz files.
func openData(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	df := &dataFile{closers: []io.Closer{f}}
	br := bufio.NewReader(f)

	switch {
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		df.Reader = xr
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		df.Reader = gr
		df.closers = append(df.closers, gr)
	default:
		df.Reader = br
	}
	return df, nil
}
