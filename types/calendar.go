package types

import "time"

// CalendarTime is the broken-down civil (UTC) form of a
// UniversalTime, relative to a chosen epoch year. It is a plain
// wire-safe struct; all calendar arithmetic happens in the
// conversion functions, never on the type itself.
type CalendarTime struct {
	Year       int32   `cramberry:"1"`
	Month      int32   `cramberry:"2"` // 1 = January
	Day        int32   `cramberry:"3"` // 1-based day of month
	Hour       int32   `cramberry:"4"`
	Minute     int32   `cramberry:"5"`
	Second     int32   `cramberry:"6"`
	NanoSecond float64 `cramberry:"7"`
}

// Calendar converts u to civil UTC time, taking day zero to be
// midnight on 1 January of epochYear. The conversion is stateless:
// the epoch is a parameter, not baked into the type, so the same
// value can be rendered against any epoch convention.
//
// time.Date normalizes out-of-range fields, so negative Days (an
// instant before day zero) rolls the date back correctly.
func Calendar(u UniversalTime, epochYear int) CalendarTime {
	t := time.Date(epochYear, time.January, 1+int(u.Days), 0, 0, int(u.Seconds), 0, time.UTC)
	return CalendarTime{
		Year:       int32(t.Year()),
		Month:      int32(t.Month()),
		Day:        int32(t.Day()),
		Hour:       int32(t.Hour()),
		Minute:     int32(t.Minute()),
		Second:     int32(t.Second()),
		NanoSecond: u.NanoSeconds,
	}
}

// epochStart returns midnight UTC on 1 January of epochYear.
func epochStart(epochYear int) time.Time {
	return time.Date(epochYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// FromTime converts a wall-clock instant to universal time relative
// to the given epoch year. Instants before the epoch produce
// negative Days.
func FromTime(t time.Time, epochYear int) UniversalTime {
	elapsed := t.Unix() - epochStart(epochYear).Unix()
	return New(0, elapsed, float64(t.Nanosecond()))
}

// Time converts u back to a wall-clock instant relative to the given
// epoch year. The fractional part of NanoSeconds below one
// nanosecond is truncated, since time.Time resolves no finer.
func (u UniversalTime) Time(epochYear int) time.Time {
	sec := epochStart(epochYear).Unix() + u.Days*SecondsPerDay + u.Seconds
	return time.Unix(sec, int64(u.NanoSeconds)).UTC()
}
