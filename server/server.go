package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/types"
)

// Server wraps a timebase with call-order enforcement and capability
// routing. Consumers interact with the timebase exclusively through
// this server.
type Server struct {
	tb    unitime.Timebase
	guard *TimebaseGuard
	caps  types.Capabilities

	// Optional interfaces (nil if not supported).
	streamer  unitime.Streamer
	adjuster  unitime.Adjuster
	historian unitime.Historian

	// Cumulative offset applied through Adjust.
	mu          sync.Mutex
	totalOffset types.UniversalTime
}

// New creates a new Server wrapping the given timebase.
func New(tb unitime.Timebase) *Server {
	s := &Server{
		tb:    tb,
		guard: NewTimebaseGuard(),
	}
	// Pre-discover optional interfaces (validated after handshake).
	s.streamer, _ = tb.(unitime.Streamer)
	s.adjuster, _ = tb.(unitime.Adjuster)
	s.historian, _ = tb.(unitime.Historian)
	return s
}

// Handshake performs the startup handshake, validates capability
// declarations, and transitions the state machine to Ready.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	s.guard.AcquireHandshake()

	resp, err := s.tb.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	if req.EpochYear != 0 && resp.EpochYear != req.EpochYear {
		s.guard.FailHandshake()
		return resp, fmt.Errorf("github.com/blockberries/unitime: timebase serves epoch year %d, consumer requires %d",
			resp.EpochYear, req.EpochYear)
	}

	if err := discoverCapabilities(s.tb, resp.Capabilities); err != nil {
		s.guard.FailHandshake()
		return resp, err
	}

	s.caps = resp.Capabilities
	s.guard.CompleteHandshake()
	return resp, nil
}

// Now returns the timebase's current reading. Safe for concurrent use.
func (s *Server) Now(ctx context.Context) (types.Mark, error) {
	s.guard.CheckConcurrent()
	return s.tb.Now(ctx)
}

// Resolve canonicalizes a raw component triple. Safe for concurrent
// use. The result is re-normalized on the way out, so a timebase
// implementation cannot leak a non-canonical value to consumers.
func (s *Server) Resolve(ctx context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	s.guard.CheckConcurrent()
	resolved, err := s.tb.Resolve(ctx, raw)
	if err != nil {
		return types.UniversalTime{}, err
	}
	return resolved.Normalized(), nil
}

// Capabilities returns the timebase's declared capabilities.
// Only valid after Handshake completes.
func (s *Server) Capabilities() types.Capabilities {
	return s.caps
}

// --- Capability-gated optional methods ---

// Subscribe delegates to Streamer if supported.
func (s *Server) Subscribe(ctx context.Context, req types.TickRequest) (<-chan types.Mark, error) {
	if s.streamer == nil {
		return nil, fmt.Errorf("github.com/blockberries/unitime: Streamer not supported")
	}
	s.guard.CheckConcurrent()
	return s.streamer.Subscribe(ctx, req)
}

// Adjust delegates to Adjuster if supported. Adjustments are
// serialized by the guard; the cumulative offset is tracked here so
// every transport sees the same total.
func (s *Server) Adjust(ctx context.Context, adj types.Adjustment) (types.AdjustResult, error) {
	if s.adjuster == nil {
		return types.AdjustResult{}, fmt.Errorf("github.com/blockberries/unitime: Adjuster not supported")
	}
	s.guard.AcquireAdjust()

	result, err := s.adjuster.Adjust(ctx, adj)
	if err != nil {
		s.guard.FailAdjust()
		return types.AdjustResult{}, err
	}

	s.mu.Lock()
	s.totalOffset = s.totalOffset.Add(result.Applied)
	result.Total = s.totalOffset
	s.mu.Unlock()

	s.guard.CompleteAdjust()
	return result, nil
}

// Between delegates to Historian if supported. Safe for concurrent use.
func (s *Server) Between(ctx context.Context, span types.Span) ([]types.Mark, error) {
	if s.historian == nil {
		return nil, fmt.Errorf("github.com/blockberries/unitime: Historian not supported")
	}
	s.guard.CheckConcurrent()
	return s.historian.Between(ctx, span)
}

// Backfill delegates to Historian if supported. Sequential: a
// backfill never overlaps an adjustment.
func (s *Server) Backfill(ctx context.Context, marks <-chan types.Mark) (types.BackfillResult, error) {
	if s.historian == nil {
		return types.BackfillResult{}, fmt.Errorf("github.com/blockberries/unitime: Historian not supported")
	}
	s.guard.AcquireSequential()
	defer s.guard.ReleaseSequential()
	return s.historian.Backfill(ctx, marks)
}

// AsStreamer returns the Streamer interface or nil.
func (s *Server) AsStreamer() unitime.Streamer {
	if s.caps.Has(types.CapStream) {
		return s.streamer
	}
	return nil
}

// AsAdjuster returns the Adjuster interface or nil.
func (s *Server) AsAdjuster() unitime.Adjuster {
	if s.caps.Has(types.CapAdjust) {
		return s.adjuster
	}
	return nil
}

// AsHistorian returns the Historian interface or nil.
func (s *Server) AsHistorian() unitime.Historian {
	if s.caps.Has(types.CapHistory) {
		return s.historian
	}
	return nil
}

// TotalOffset returns the cumulative offset applied through Adjust.
func (s *Server) TotalOffset() types.UniversalTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalOffset
}

// Close is a no-op for the server wrapper.
func (s *Server) Close() error { return nil }

// discoverCapabilities checks which optional interfaces the timebase
// implements and verifies consistency with declared capabilities.
func discoverCapabilities(tb unitime.Timebase, declared types.Capabilities) error {
	_, hasStreamer := tb.(unitime.Streamer)
	_, hasAdjuster := tb.(unitime.Adjuster)
	_, hasHistorian := tb.(unitime.Historian)

	if declared.Has(types.CapStream) && !hasStreamer {
		return fmt.Errorf("github.com/blockberries/unitime: timebase declared CapStream but does not implement Streamer")
	}
	if declared.Has(types.CapAdjust) && !hasAdjuster {
		return fmt.Errorf("github.com/blockberries/unitime: timebase declared CapAdjust but does not implement Adjuster")
	}
	if declared.Has(types.CapHistory) && !hasHistorian {
		return fmt.Errorf("github.com/blockberries/unitime: timebase declared CapHistory but does not implement Historian")
	}
	return nil
}
