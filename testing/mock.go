// Package unitimetest provides test utilities for timebase
// development, including a configurable mock, a test harness,
// and a timebase compliance test suite.
package unitimetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/types"
)

// Compile-time check that MockTimebase satisfies all interfaces.
var (
	_ unitime.Timebase  = (*MockTimebase)(nil)
	_ unitime.Streamer  = (*MockTimebase)(nil)
	_ unitime.Adjuster  = (*MockTimebase)(nil)
	_ unitime.Historian = (*MockTimebase)(nil)
)

// MockTimebase is a configurable mock timebase for boundary testing.
// All methods are configurable via function fields. Unconfigured
// methods return sensible zero-value defaults.
//
// MockTimebase implements all optional interfaces so it can be used
// to test capability discovery. Control which capabilities are
// declared via the DeclaredCapabilities field.
type MockTimebase struct {
	mu sync.Mutex

	// DeclaredCapabilities controls the bitfield returned at handshake.
	DeclaredCapabilities types.Capabilities

	// EpochYear is the epoch year reported at handshake. Zero means
	// the default epoch of 2010.
	EpochYear int32

	// Configurable handlers. If nil, defaults are used.
	HandshakeFn func(context.Context, types.HandshakeRequest) (types.HandshakeResponse, error)
	NowFn       func(context.Context) (types.Mark, error)
	ResolveFn   func(context.Context, types.UniversalTime) (types.UniversalTime, error)
	SubscribeFn func(context.Context, types.TickRequest) (<-chan types.Mark, error)
	AdjustFn    func(context.Context, types.Adjustment) (types.AdjustResult, error)
	BetweenFn   func(context.Context, types.Span) ([]types.Mark, error)
	BackfillFn  func(context.Context, <-chan types.Mark) (types.BackfillResult, error)

	// Call counters (atomic for concurrent access).
	HandshakeCalls atomic.Int64
	NowCalls       atomic.Int64
	ResolveCalls   atomic.Int64
	SubscribeCalls atomic.Int64
	AdjustCalls    atomic.Int64
	BetweenCalls   atomic.Int64
	BackfillCalls  atomic.Int64

	seq uint64
}

func (m *MockTimebase) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	epoch := m.EpochYear
	if epoch == 0 {
		epoch = 2010
	}
	return types.HandshakeResponse{
		EpochYear:    epoch,
		Capabilities: m.DeclaredCapabilities,
	}, nil
}

func (m *MockTimebase) Now(ctx context.Context) (types.Mark, error) {
	m.NowCalls.Add(1)
	if m.NowFn != nil {
		return m.NowFn(ctx)
	}
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.mu.Unlock()
	return types.Mark{
		Time:     types.New(0, int64(seq), 0),
		Sequence: seq,
	}, nil
}

func (m *MockTimebase) Resolve(ctx context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	m.ResolveCalls.Add(1)
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, raw)
	}
	return raw.Normalized(), nil
}

func (m *MockTimebase) Subscribe(ctx context.Context, req types.TickRequest) (<-chan types.Mark, error) {
	m.SubscribeCalls.Add(1)
	if m.SubscribeFn != nil {
		return m.SubscribeFn(ctx, req)
	}
	ch := make(chan types.Mark)
	close(ch)
	return ch, nil
}

func (m *MockTimebase) Adjust(ctx context.Context, adj types.Adjustment) (types.AdjustResult, error) {
	m.AdjustCalls.Add(1)
	if m.AdjustFn != nil {
		return m.AdjustFn(ctx, adj)
	}
	return types.AdjustResult{Applied: adj.Delta, Total: adj.Delta}, nil
}

func (m *MockTimebase) Between(ctx context.Context, span types.Span) ([]types.Mark, error) {
	m.BetweenCalls.Add(1)
	if m.BetweenFn != nil {
		return m.BetweenFn(ctx, span)
	}
	return nil, nil
}

func (m *MockTimebase) Backfill(ctx context.Context, marks <-chan types.Mark) (types.BackfillResult, error) {
	m.BackfillCalls.Add(1)
	if m.BackfillFn != nil {
		return m.BackfillFn(ctx, marks)
	}
	var result types.BackfillResult
	for range marks {
		result.Accepted++
	}
	return result, nil
}
