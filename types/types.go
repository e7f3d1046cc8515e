// Package types defines the core data types for the unitime
// timebase boundary.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns (gRPC codec
// registration) are handled in the transport packages; calendar
// conversion is a stateless mapping in this package and is never a
// responsibility of UniversalTime itself.
package types

// Mark is a single reading of a timebase: a canonical universal time
// paired with the monotone sequence number of the reading. Two marks
// with the same sequence number came from the same reading.
type Mark struct {
	Time     UniversalTime `cramberry:"1"`
	Sequence uint64        `cramberry:"2"`
}

// Span is a closed interval of universal time. From and To are
// inclusive; a span with To before From is empty.
type Span struct {
	From UniversalTime `cramberry:"1"`
	To   UniversalTime `cramberry:"2"`
}

// Contains reports whether t falls within the span.
func (s Span) Contains(t UniversalTime) bool {
	return !t.Before(s.From) && !t.After(s.To)
}

// TickRequest configures a mark subscription.
type TickRequest struct {
	// Interval between marks. Must be positive.
	Interval UniversalTime `cramberry:"1"`
	// Count limits the number of marks delivered. 0 = unbounded.
	Count uint32 `cramberry:"2"`
}

// Adjustment is a signed correction applied to a timebase, e.g. a
// drift measurement against an external reference. A backward step
// is a Delta with negative Days and in-range Seconds/NanoSeconds,
// exactly as the arithmetic produces it.
type Adjustment struct {
	Delta UniversalTime `cramberry:"1"`
	// Reason is free-form, for operator audit trails.
	Reason string `cramberry:"2"`
}

// AdjustResult reports an applied adjustment.
type AdjustResult struct {
	// Applied is the delta actually applied.
	Applied UniversalTime `cramberry:"1"`
	// Total is the cumulative offset applied over the lifetime of
	// the timebase, including this adjustment.
	Total UniversalTime `cramberry:"2"`
}

// BackfillResult reports the outcome of a historian backfill.
type BackfillResult struct {
	Accepted uint32 `cramberry:"1"`
	// Rejected counts marks dropped for being non-canonical or out
	// of sequence.
	Rejected uint32 `cramberry:"2"`
}
