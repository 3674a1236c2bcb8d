package timex

import "time"

// DayLayout is the key format used to bucket rows per calendar day.
const DayLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Millisecond)
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func EndOfYear(t time.Time) time.Time {
	return StartOfYear(t).AddDate(1, 0, 0).Add(-time.Millisecond)
}

// StartOfWeek returns the start of t's week. Weeks start on Sunday.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}

func Today(now time.Time) DateRange {
	return DateRange{Start: StartOfDay(now), End: EndOfDay(now)}
}

func Yesterday(now time.Time) DateRange {
	return Today(now.AddDate(0, 0, -1))
}

// LastDays covers the n days before now plus today.
func LastDays(now time.Time, n int) DateRange {
	return DateRange{Start: StartOfDay(now.AddDate(0, 0, -n)), End: EndOfDay(now)}
}

func ThisWeek(now time.Time) DateRange {
	return DateRange{Start: StartOfWeek(now), End: EndOfWeek(now)}
}

func ThisMonth(now time.Time) DateRange {
	return DateRange{Start: StartOfMonth(now), End: EndOfMonth(now)}
}

func ThisYear(now time.Time) DateRange {
	return DateRange{Start: StartOfYear(now), End: EndOfYear(now)}
}

// DayKey formats t in its own location as yyyy-mm-dd.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}
