package unitimetest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/types"
)

// RunComplianceSuite runs a standard compliance test suite against
// a timebase to verify correct boundary behavior.
//
// The factory function should return a fresh timebase instance
// for each test.
func RunComplianceSuite(t *testing.T, factory func() unitime.Timebase) {
	t.Helper()

	t.Run("handshake", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		resp := h.HandshakeDefault()
		if resp.EpochYear == 0 {
			t.Error("handshake should return a non-zero epoch year")
		}
		if !resp.Current.Time.IsCanonical() {
			t.Errorf("handshake mark not canonical: %+v", resp.Current.Time)
		}
	})

	t.Run("now_returns_canonical_marks", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		for i := 0; i < 5; i++ {
			mark := h.Now()
			if !mark.Time.IsCanonical() {
				t.Errorf("mark %d not canonical: %+v", i, mark.Time)
			}
		}
	})

	t.Run("now_sequence_monotone", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		var last uint64
		for i := 0; i < 5; i++ {
			mark := h.Now()
			if mark.Sequence <= last {
				t.Errorf("sequence not increasing: %d after %d", mark.Sequence, last)
			}
			last = mark.Sequence
		}
	})

	t.Run("now_time_never_regresses", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		prev := h.Now().Time
		for i := 0; i < 5; i++ {
			mark := h.Now()
			if mark.Time.Before(prev) {
				t.Errorf("time regressed: %s before %s", mark.Time, prev)
			}
			prev = mark.Time
		}
	})

	t.Run("resolve_canonicalizes", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		raws := []types.UniversalTime{
			{},
			{Days: 1, Seconds: 2, NanoSeconds: 3},
			{Seconds: 100000},
			{Seconds: -1},
			{NanoSeconds: -1},
			{Days: -1, Seconds: 90000, NanoSeconds: 2.5e9},
		}
		for _, raw := range raws {
			u := h.Resolve(raw)
			if !u.IsCanonical() {
				t.Errorf("Resolve(%+v) not canonical: %+v", raw, u)
			}
			if !u.Equal(raw.Normalized()) {
				t.Errorf("Resolve(%+v) changed the instant: %+v", raw, u)
			}
		}
	})

	t.Run("resolve_deterministic", func(t *testing.T) {
		// Resolve on two instances must agree for the same input.
		h1 := NewHarness(t, factory())
		h1.HandshakeDefault()
		h2 := NewHarness(t, factory())
		h2.HandshakeDefault()

		raw := types.UniversalTime{Days: 2, Seconds: -100, NanoSeconds: 1.5e9}
		u1 := h1.Resolve(raw)
		u2 := h2.Resolve(raw)
		if u1 != u2 {
			t.Errorf("non-deterministic resolve: %+v != %+v", u1, u2)
		}
	})

	t.Run("concurrent_now_after_handshake", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().Now(context.Background())
				if err != nil {
					t.Errorf("concurrent Now failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("concurrent_resolve_after_handshake", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		h.HandshakeDefault()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().Resolve(context.Background(), types.UniversalTime{Seconds: 90000})
				if err != nil {
					t.Errorf("concurrent Resolve failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("adjust_reported_in_total", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		resp := h.HandshakeDefault()
		if !resp.Capabilities.Has(types.CapAdjust) {
			t.Skip("timebase does not declare Adjust")
		}

		delta := types.New(0, 1, 0)
		result := h.Adjust(delta, "compliance")
		if !result.Applied.Equal(delta) {
			t.Errorf("expected applied %s, got %s", delta, result.Applied)
		}

		back := types.UniversalTime{}.Sub(delta)
		result = h.Adjust(back, "compliance undo")
		if !result.Total.IsZero() {
			t.Errorf("expected zero total after undo, got %s", result.Total)
		}
	})

	t.Run("between_ordered_and_in_span", func(t *testing.T) {
		tb := factory()
		h := NewHarness(t, tb)
		resp := h.HandshakeDefault()
		if !resp.Capabilities.Has(types.CapHistory) {
			t.Skip("timebase does not declare History")
		}

		for i := 0; i < 3; i++ {
			h.Now()
		}
		span := types.Span{
			From: types.New(-1000000, 0, 0),
			To:   types.New(1000000, 0, 0),
		}
		marks := h.Between(span)
		for i, mark := range marks {
			if !span.Contains(mark.Time) {
				t.Errorf("mark %d outside span: %s", i, mark.Time)
			}
			if i > 0 && mark.Time.Before(marks[i-1].Time) {
				t.Errorf("marks out of order at %d: %s before %s",
					i, mark.Time, marks[i-1].Time)
			}
		}
	})
}
