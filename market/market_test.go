package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := Date{Year: 2022, Month: time.March, Day: 31}
	for _, s := range []string{"2022-03-31", " 2022-03-31 ", "2022-03-31 00:00:00", "2022-03-31T15:04:05Z", "2022-03-31 09:30:00-05:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDate("31/03/2022")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	d := Date{Year: 2024, Month: time.February, Day: 28}
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d.AddDays(1))
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 1}, d.AddDays(2))
	assert.Equal(t, time.Wednesday, d.Weekday())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(d))
	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, "20240228", d.Compact())
	assert.Equal(t, "", Date{}.String())
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	from := Date{Year: 2022, Month: time.January, Day: 1}
	to := Date{Year: 2022, Month: time.March, Day: 31}
	r := DateRange{From: from, To: to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.False(t, r.Contains(to.AddDays(1)))
	assert.False(t, r.Contains(from.AddDays(-1)))
	assert.True(t, DateRange{}.Contains(from))
	assert.NoError(t, r.Validate())
	assert.Error(t, DateRange{From: to, To: from}.Validate())
}

func TestDateTextEncoding(t *testing.T) {
	t.Parallel()

	r := DateRange{From: Date{Year: 2022, Month: time.January, Day: 3}}

	y, err := yaml.Marshal(r)
	require.NoError(t, err)
	var fromYAML DateRange
	require.NoError(t, yaml.Unmarshal(y, &fromYAML))
	assert.Equal(t, r, fromYAML)

	j, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2022-01-03","to":""}`, string(j))
	var fromJSON DateRange
	require.NoError(t, json.Unmarshal(j, &fromJSON))
	assert.Equal(t, r, fromJSON)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	ts, err := ParseTime("2022-01-03 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 3, 9, 30, 0, 0, time.UTC), ts)

	ts, err = ParseTime("2022-01-03 09:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2022, Month: time.January, Day: 3}, DateOf(ts))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func minuteBars(start time.Time, n int) Bars {
	bs := make(Bars, n)
	for i := range bs {
		ts := start.Add(time.Duration(i) * time.Minute)
		bs[i] = Bar{Time: ts, Close: float64(i), DOW: ts.Weekday()}
	}
	return bs
}

func TestBarsValidate(t *testing.T) {
	t.Parallel()

	bs := minuteBars(time.Date(2022, 1, 3, 9, 30, 0, 0, time.UTC), 3)
	assert.NoError(t, bs.Validate())
	assert.NoError(t, Bars(nil).Validate())

	dup := append(Bars{}, bs...)
	dup[2].Time = dup[1].Time
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateTimestamp)

	back := append(Bars{}, bs...)
	back[0], back[2] = back[2], back[0]
	assert.ErrorIs(t, back.Validate(), ErrUnsorted)
}

func TestBarsLastOfDayAndSplit(t *testing.T) {
	t.Parallel()

	var bs Bars
	for d := 0; d < 5; d++ {
		bs = append(bs, minuteBars(time.Date(2022, 1, 3+d, 9, 30, 0, 0, time.UTC), 3)...)
	}

	for i := range bs {
		assert.Equal(t, i%3 == 2, bs.LastOfDay(i), "bar %d", i)
	}

	parts := bs.Split(2)
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 6)
	assert.Len(t, parts[1], 6)
	assert.Len(t, parts[2], 3)
	assert.Equal(t, bs[6].Time, parts[1][0].Time)

	assert.Len(t, bs.Split(0), 1)
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]time.Weekday{"wednesday": time.Wednesday, "Mon": time.Monday, " FRIDAY ": time.Friday} {
		got, err := ParseWeekday(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseWeekday("funday")
	assert.Error(t, err)
	assert.Equal(t, "sunday", DayName(time.Sunday))
}

func TestLevelTable(t *testing.T) {
	t.Parallel()

	d1 := Date{Year: 2022, Month: time.January, Day: 4}
	d0 := d1.AddDays(-1)
	full := DailyLevels{Date: d1, LongEntry: Defined(1), ShortEntry: Defined(2), LongStop: Defined(3), ShortStop: Defined(4)}
	partial := DailyLevels{Date: d0, LongEntry: Defined(1)}

	tbl := NewLevelTable([]DailyLevels{full, partial})
	assert.Equal(t, 2, tbl.Len())

	got, ok := tbl.Lookup(d1)
	assert.True(t, ok)
	assert.True(t, got.Complete())

	got, ok = tbl.Lookup(d0)
	assert.True(t, ok)
	assert.False(t, got.Complete())

	got, ok = tbl.Lookup(d1.AddDays(5))
	assert.False(t, ok)
	assert.False(t, got.Complete())

	rows := tbl.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, d0, rows[0].Date)

	var nilTable *LevelTable
	_, ok = nilTable.Lookup(d1)
	assert.False(t, ok)
	assert.Equal(t, 0, nilTable.Len())
}

func TestDefinedRejectsNaN(t *testing.T) {
	t.Parallel()

	var zero float64
	assert.False(t, Defined(zero/zero).Valid)
	assert.True(t, Defined(0).Valid)
}
