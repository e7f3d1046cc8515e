// Package server provides the consumer-side wrapper that enforces
// the timebase call-order contract and routes capability-gated
// calls.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// timebaseState represents a state in the timebase call-order state
// machine.
type timebaseState uint32

const (
	// stateInit: Waiting for Handshake. No other calls allowed.
	stateInit timebaseState = iota
	// stateReady: Handshake complete. Concurrent calls allowed:
	// Now, Resolve, Between. Sequential calls allowed: Adjust.
	stateReady
	// stateAdjusting: Adjust has been called. No second Adjust
	// until it returns; concurrent reads stay allowed.
	stateAdjusting
)

func (s timebaseState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateReady:
		return "Ready"
	case stateAdjusting:
		return "Adjusting"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// TimebaseGuard enforces the timebase call-order contract. The
// consumer wraps the timebase with this guard to ensure Handshake
// runs first and adjustments never overlap.
type TimebaseGuard struct {
	state atomic.Uint32
	// Mutex for sequential calls (Adjust, Backfill).
	seqMu sync.Mutex
	// Tracks whether Handshake has completed (for concurrent call
	// gating).
	handshakeDone atomic.Bool
}

// NewTimebaseGuard creates a guard in the Init state.
func NewTimebaseGuard() *TimebaseGuard {
	g := &TimebaseGuard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current guard state.
func (g *TimebaseGuard) State() string {
	return timebaseState(g.state.Load()).String()
}

// AcquireHandshake transitions Init → Ready.
// Panics if not in Init state.
func (g *TimebaseGuard) AcquireHandshake() {
	if !g.state.CompareAndSwap(uint32(stateInit), uint32(stateReady)) {
		panic(fmt.Sprintf("github.com/blockberries/unitime: Handshake called in state %s (expected Init)",
			timebaseState(g.state.Load())))
	}
}

// CompleteHandshake marks handshake as done, enabling concurrent calls.
func (g *TimebaseGuard) CompleteHandshake() {
	g.handshakeDone.Store(true)
}

// FailHandshake rolls back state to Init if handshake fails.
func (g *TimebaseGuard) FailHandshake() {
	g.state.Store(uint32(stateInit))
}

// AcquireAdjust transitions Ready → Adjusting.
// Blocks if another sequential operation is in progress.
// Panics if not in Ready state.
func (g *TimebaseGuard) AcquireAdjust() {
	g.seqMu.Lock()
	if state := timebaseState(g.state.Load()); state != stateReady {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("github.com/blockberries/unitime: Adjust called in state %s (expected Ready)", state))
	}
	g.state.Store(uint32(stateAdjusting))
}

// CompleteAdjust transitions Adjusting → Ready.
func (g *TimebaseGuard) CompleteAdjust() {
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// FailAdjust transitions Adjusting → Ready on error, allowing retry.
func (g *TimebaseGuard) FailAdjust() {
	g.state.Store(uint32(stateReady))
	g.seqMu.Unlock()
}

// AcquireSequential takes the sequential-call lock without a state
// transition, for operations like Backfill that must not overlap an
// adjustment but have no dedicated state. Panics if handshake has
// not completed.
func (g *TimebaseGuard) AcquireSequential() {
	if !g.handshakeDone.Load() {
		panic("github.com/blockberries/unitime: sequential call before Handshake completed")
	}
	g.seqMu.Lock()
}

// ReleaseSequential releases the sequential-call lock.
func (g *TimebaseGuard) ReleaseSequential() {
	g.seqMu.Unlock()
}

// CheckConcurrent verifies that concurrent calls are allowed
// (any state after Handshake). Panics if handshake has not completed.
func (g *TimebaseGuard) CheckConcurrent() {
	if !g.handshakeDone.Load() {
		panic("github.com/blockberries/unitime: concurrent call before Handshake completed")
	}
}

// IsReady returns true if the guard is in the Ready state.
func (g *TimebaseGuard) IsReady() bool {
	return timebaseState(g.state.Load()) == stateReady
}
