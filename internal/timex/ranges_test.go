package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wed = time.Date(2025, time.March, 12, 15, 4, 5, 0, time.UTC) // Wednesday

func TestDayBounds(t *testing.T) {
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), StartOfDay(wed))
	assert.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, int(999*time.Millisecond), time.UTC), EndOfDay(wed))
}

func TestMonthAndYearBounds(t *testing.T) {
	feb := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(feb))
	assert.Equal(t, 29, EndOfMonth(feb).Day(), "leap year")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), StartOfYear(feb))
	assert.Equal(t, time.December, EndOfYear(feb).Month())
	assert.Equal(t, 31, EndOfYear(feb).Day())
}

func TestWeekStartsOnSunday(t *testing.T) {
	w := ThisWeek(wed)
	assert.Equal(t, time.Sunday, w.Start.Weekday())
	assert.Equal(t, 9, w.Start.Day())
	assert.Equal(t, time.Saturday, w.End.Weekday())
	assert.Equal(t, 15, w.End.Day())

	sun := time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, StartOfWeek(sun).Day())
}

func TestRelativeRanges(t *testing.T) {
	y := Yesterday(wed)
	assert.Equal(t, 11, y.Start.Day())
	assert.Equal(t, 11, y.End.Day())

	l := LastDays(wed, 10)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), l.Start)
	assert.Equal(t, EndOfDay(wed), l.End)

	assert.True(t, Today(wed).Contains(wed))
	assert.False(t, Today(wed).Contains(wed.AddDate(0, 0, 1)))
	assert.True(t, ThisMonth(wed).Valid())
	assert.True(t, ThisYear(wed).Contains(wed))
	assert.False(t, DateRange{}.Valid())
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2025-03-12", DayKey(wed))
}

func TestDuration_JSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"3s","b":1000000000}`), &v))
	assert.Equal(t, 3*time.Second, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)

	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &v))
}
