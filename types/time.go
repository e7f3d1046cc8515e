package types

import "fmt"

// Unit conversion constants for the three-component representation.
const (
	// SecondsPerDay is the length of a universal-time day. Days are
	// exactly 86400 seconds; there is no leap-second handling at
	// this level.
	SecondsPerDay int64 = 86400

	// NanosPerSecond is the number of nanoseconds in one second.
	NanosPerSecond float64 = 1e9
)

// UniversalTime is the time elapsed since day zero of a fixed epoch,
// held as three signed components: whole days, seconds within the
// day, and a fractional nanosecond remainder. Splitting the value
// keeps full sub-second precision over a multi-decade range, which a
// single float64 of seconds cannot do.
//
// A UniversalTime is canonical when 0 <= Seconds < 86400 and
// 0 <= NanoSeconds < 1e9; Days alone carries the sign, so instants
// before day zero have negative Days and in-range Seconds and
// NanoSeconds. Every value produced by New, Add, Sub, or Normalized
// is canonical. Values whose fields are set directly (or decoded
// from the wire) must be passed through Normalized before being
// compared or combined.
//
// The zero value is day zero itself and is canonical.
type UniversalTime struct {
	Days        int64   `cramberry:"1"`
	Seconds     int64   `cramberry:"2"`
	NanoSeconds float64 `cramberry:"3"`
}

// New builds a canonical UniversalTime from raw component values.
// Any signed, out-of-range combination is accepted; carries and
// borrows are folded across the component boundaries so construction
// cannot fail.
func New(days, seconds int64, nanoSeconds float64) UniversalTime {
	return UniversalTime{Days: days, Seconds: seconds, NanoSeconds: nanoSeconds}.Normalized()
}

// timeOrdered reports whether the triple denotes an instant at or
// after day zero, comparing days first, then seconds, then
// nanoseconds when the coarser components are zero.
func timeOrdered(days, seconds int64, nanos float64) bool {
	if days < 0 {
		return false
	}
	if days == 0 && seconds < 0 {
		return false
	}
	if days == 0 && seconds == 0 && nanos < 0 {
		return false
	}
	return true
}

// Normalized returns the canonical form of u. The result denotes the
// same instant; only the split across components changes.
//
// Normalization runs in two phases. A sign-directed borrow first
// folds any component whose sign disagrees with the overall instant,
// so the truncating division below never splits a value that
// straddles a unit boundary into mixed-sign components. A magnitude
// carry then moves whole seconds out of NanoSeconds and whole days
// out of Seconds, and a final borrow pins any remaining negative
// remainder into its canonical range. Each phase is a fixed number of
// steps; there is no iteration.
func (u UniversalTime) Normalized() UniversalTime {
	days, seconds, nanos := u.Days, u.Seconds, u.NanoSeconds

	// Phase one: sign-directed borrow/fold.
	if timeOrdered(days, seconds, nanos) {
		if nanos < 0 {
			seconds--
			nanos += NanosPerSecond
		}
		if seconds < 0 {
			days--
			seconds += SecondsPerDay
		}
	} else {
		if nanos > 0 {
			seconds++
			nanos -= NanosPerSecond
		}
		if seconds > 0 {
			days++
			seconds -= SecondsPerDay
		}
	}

	// Phase two: magnitude carry, truncating toward zero. The carry
	// happens on every construction and mutation so error in the
	// float64 component can never accumulate across operations.
	overflowSeconds := int64(nanos / NanosPerSecond)
	seconds += overflowSeconds
	nanos -= float64(overflowSeconds) * NanosPerSecond
	overflowDays := seconds / SecondsPerDay
	days += overflowDays
	seconds -= overflowDays * SecondsPerDay

	// The carry leaves each component within one unit of its range;
	// one more borrow moves a negative remainder into [0, unit).
	if nanos < 0 {
		seconds--
		nanos += NanosPerSecond
	}
	if seconds < 0 {
		days--
		seconds += SecondsPerDay
	}

	return UniversalTime{Days: days, Seconds: seconds, NanoSeconds: nanos}
}

// IsCanonical reports whether u is already in canonical form.
func (u UniversalTime) IsCanonical() bool {
	return u.Seconds >= 0 && u.Seconds < SecondsPerDay &&
		u.NanoSeconds >= 0 && u.NanoSeconds < NanosPerSecond
}

// IsZero reports whether u is day zero exactly.
func (u UniversalTime) IsZero() bool {
	return u.Days == 0 && u.Seconds == 0 && u.NanoSeconds == 0
}

// Add returns the canonical sum of u and v. Neither operand is
// modified.
func (u UniversalTime) Add(v UniversalTime) UniversalTime {
	return UniversalTime{
		Days:        u.Days + v.Days,
		Seconds:     u.Seconds + v.Seconds,
		NanoSeconds: u.NanoSeconds + v.NanoSeconds,
	}.Normalized()
}

// Sub returns the canonical difference u minus v. Neither operand is
// modified. The result has negative Days when u precedes v.
func (u UniversalTime) Sub(v UniversalTime) UniversalTime {
	return UniversalTime{
		Days:        u.Days - v.Days,
		Seconds:     u.Seconds - v.Seconds,
		NanoSeconds: u.NanoSeconds - v.NanoSeconds,
	}.Normalized()
}

// Compare orders u against v, returning -1 when u precedes v, 0 when
// they denote the same instant, and +1 when u follows v. Both
// operands must be canonical; components are compared coarsest
// first, each tier deciding only when the tier above is equal.
func (u UniversalTime) Compare(v UniversalTime) int {
	switch {
	case u.Days < v.Days:
		return -1
	case u.Days > v.Days:
		return 1
	case u.Seconds < v.Seconds:
		return -1
	case u.Seconds > v.Seconds:
		return 1
	case u.NanoSeconds < v.NanoSeconds:
		return -1
	case u.NanoSeconds > v.NanoSeconds:
		return 1
	}
	return 0
}

// Before reports whether u precedes v.
func (u UniversalTime) Before(v UniversalTime) bool {
	return u.Compare(v) < 0
}

// After reports whether u follows v.
func (u UniversalTime) After(v UniversalTime) bool {
	return u.Compare(v) > 0
}

// Equal reports whether u and v denote the same instant. Canonical
// values denoting the same instant always have identical components.
func (u UniversalTime) Equal(v UniversalTime) bool {
	return u.Compare(v) == 0
}

// String formats u as days plus time-of-day, e.g. "3d 07:25:10.000001547".
func (u UniversalTime) String() string {
	h := u.Seconds / 3600
	m := (u.Seconds % 3600) / 60
	s := u.Seconds % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d.%09d", u.Days, h, m, s, int64(u.NanoSeconds))
}
