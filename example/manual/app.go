// Package manual implements a deterministic, manually advanced
// timebase. It demonstrates the core Timebase interface plus the
// Adjust capability, and doubles as a fixture for replay tooling:
// nothing moves unless the test driver calls Advance.
package manual

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/types"
)

// EpochYear is the epoch convention this timebase serves: day zero
// is midnight on 1 January 2010, UTC.
const EpochYear int32 = 2010

// DefaultSkewLimit bounds a single adjustment to ten minutes.
var DefaultSkewLimit = types.New(0, 600, 0)

// Compile-time interface checks.
var (
	_ unitime.Timebase = (*Timebase)(nil)
	_ unitime.Adjuster = (*Timebase)(nil)
)

// Timebase is a manually advanced timebase.
type Timebase struct {
	mu      sync.Mutex
	current types.UniversalTime
	seq     uint64
	limit   types.UniversalTime
}

// New creates a timebase at day zero with the default skew limit.
func New() *Timebase {
	return &Timebase{limit: DefaultSkewLimit}
}

// NewAt creates a timebase at the given starting time.
func NewAt(start types.UniversalTime) *Timebase {
	return &Timebase{current: start.Normalized(), limit: DefaultSkewLimit}
}

// Advance moves the timebase forward by delta. It is the test
// driver's hook, not part of the boundary interface.
func (tb *Timebase) Advance(delta types.UniversalTime) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.current = tb.current.Add(delta)
}

func (tb *Timebase) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	if req.EpochYear != 0 && req.EpochYear != EpochYear {
		return types.HandshakeResponse{}, fmt.Errorf("manual timebase serves epoch year %d, not %d", EpochYear, req.EpochYear)
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return types.HandshakeResponse{
		EpochYear:    EpochYear,
		Current:      types.Mark{Time: tb.current, Sequence: tb.seq},
		Capabilities: types.CapAdjust,
	}, nil
}

func (tb *Timebase) Now(_ context.Context) (types.Mark, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.seq++
	return types.Mark{Time: tb.current, Sequence: tb.seq}, nil
}

func (tb *Timebase) Resolve(_ context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	return raw.Normalized(), nil
}

func (tb *Timebase) Adjust(_ context.Context, adj types.Adjustment) (types.AdjustResult, error) {
	delta := adj.Delta.Normalized()
	if magnitude(delta).After(tb.limit) {
		return types.AdjustResult{}, unitime.NewSkewError(delta, tb.limit)
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.current = tb.current.Add(delta)
	return types.AdjustResult{Applied: delta}, nil
}

// magnitude returns |u|.
func magnitude(u types.UniversalTime) types.UniversalTime {
	if u.Days < 0 {
		return types.UniversalTime{}.Sub(u)
	}
	return u
}
