// Package unitime defines the timebase boundary: the interface
// between a timebase — the component that owns the mapping from raw
// counter readings to elapsed time since a fixed day zero — and the
// consumers that read, stream, and correct it.
//
// The core [Timebase] interface is required. All other interfaces
// are optional capabilities discovered via Go type assertion at
// handshake time.
//
// The time values themselves live in the types package:
// [types.UniversalTime] is a plain value type and can be used on its
// own without any of the service machinery here.
package unitime

import (
	"context"

	"github.com/blockberries/unitime/types"
)

// Timebase is the core interface every timebase must implement.
//
// The consumer guarantees the following call order:
//  1. Handshake is called exactly once, before anything else.
//  2. Now, Resolve may be called concurrently at any time after
//     Handshake.
type Timebase interface {
	// Handshake is called once on every connection.
	//
	// The consumer names the epoch convention it expects (day zero =
	// midnight on 1 January of the requested year, UTC), or 0 to
	// accept the timebase's native epoch. A timebase that cannot
	// serve the requested epoch MUST fail the handshake rather than
	// answer against a different day zero.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error)

	// Now returns the timebase's current reading. Sequence numbers
	// are monotone non-decreasing across calls.
	//
	// This method MUST be safe for concurrent use.
	Now(ctx context.Context) (types.Mark, error)

	// Resolve canonicalizes a raw component triple, e.g. the day
	// counter, second counter, and TDC remainder read out of
	// acquisition hardware. The components may be individually
	// negative or out of range; the result is always canonical.
	//
	// Resolve MUST be deterministic and MUST be safe for concurrent
	// use.
	Resolve(ctx context.Context, raw types.UniversalTime) (types.UniversalTime, error)
}

// Streamer delivers periodic marks without per-reading round trips.
//
// Declared via: types.CapStream in HandshakeResponse.Capabilities
type Streamer interface {
	// Subscribe yields one mark per interval on the returned
	// channel. The channel is closed when req.Count marks have been
	// delivered (if nonzero) or when ctx is cancelled.
	Subscribe(ctx context.Context, req types.TickRequest) (<-chan types.Mark, error)
}

// Adjuster applies signed corrections to the timebase, e.g. after a
// drift measurement against an external reference clock.
//
// Declared via: types.CapAdjust in HandshakeResponse.Capabilities
type Adjuster interface {
	// Adjust shifts the timebase by adj.Delta. Adjustments are
	// serialized: the consumer never issues a second Adjust before
	// the first returns. A delta beyond the timebase's sanity bound
	// returns a *SkewError and leaves the timebase unchanged.
	Adjust(ctx context.Context, adj types.Adjustment) (types.AdjustResult, error)
}

// Historian records marks and answers ordered queries over them.
//
// Declared via: types.CapHistory in HandshakeResponse.Capabilities
type Historian interface {
	// Between returns recorded marks within the span, inclusive on
	// both ends, ordered oldest first.
	//
	// This method MUST be safe for concurrent use.
	Between(ctx context.Context, span types.Span) ([]types.Mark, error)

	// Backfill ingests marks recorded elsewhere (client-streamed
	// over gRPC). The timebase reads the channel to exhaustion and
	// reports how many marks it accepted.
	Backfill(ctx context.Context, marks <-chan types.Mark) (types.BackfillResult, error)
}

// Application is a convenience interface that embeds all unitime
// interfaces. Timebases that support every capability may implement
// this directly; most should implement only Timebase plus the
// optional interfaces they need.
type Application interface {
	Timebase
	Streamer
	Adjuster
	Historian
}

// Connection represents a transport-agnostic connection to a
// timebase. Both gRPC clients and in-process adapters implement
// this.
type Connection interface {
	Timebase

	// Capabilities returns the capabilities discovered at handshake.
	// Must only be called after Handshake completes.
	Capabilities() types.Capabilities

	// AsStreamer returns the Streamer interface if available, or nil
	// if the timebase does not support it.
	AsStreamer() Streamer

	// AsAdjuster returns the Adjuster interface if available.
	AsAdjuster() Adjuster

	// AsHistorian returns the Historian interface if available.
	AsHistorian() Historian

	// Close terminates the connection.
	Close() error
}
