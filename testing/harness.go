package unitimetest

import (
	"context"
	"testing"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/server"
	"github.com/blockberries/unitime/types"
)

// Harness provides a convenient test harness for timebase
// developers to test their implementation against the boundary
// state machine.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness wrapping the given timebase.
func NewHarness(t *testing.T, tb unitime.Timebase) *Harness {
	t.Helper()
	return &Harness{t: t, srv: server.New(tb)}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Handshake performs the opening handshake with the given request.
func (h *Harness) Handshake(req types.HandshakeRequest) types.HandshakeResponse {
	h.t.Helper()
	resp, err := h.srv.Handshake(context.Background(), req)
	if err != nil {
		h.t.Fatalf("Handshake failed: %v", err)
	}
	return resp
}

// HandshakeDefault performs a handshake accepting the timebase's
// native epoch.
func (h *Harness) HandshakeDefault() types.HandshakeResponse {
	h.t.Helper()
	return h.Handshake(types.HandshakeRequest{})
}

// Now requests the current mark.
func (h *Harness) Now() types.Mark {
	h.t.Helper()
	mark, err := h.srv.Now(context.Background())
	if err != nil {
		h.t.Fatalf("Now failed: %v", err)
	}
	return mark
}

// Resolve canonicalizes a raw timestamp through the timebase.
func (h *Harness) Resolve(raw types.UniversalTime) types.UniversalTime {
	h.t.Helper()
	u, err := h.srv.Resolve(context.Background(), raw)
	if err != nil {
		h.t.Fatalf("Resolve failed: %v", err)
	}
	return u
}

// Adjust applies a clock adjustment.
func (h *Harness) Adjust(delta types.UniversalTime, reason string) types.AdjustResult {
	h.t.Helper()
	result, err := h.srv.Adjust(context.Background(), types.Adjustment{
		Delta:  delta,
		Reason: reason,
	})
	if err != nil {
		h.t.Fatalf("Adjust failed: %v", err)
	}
	return result
}

// Between queries recorded marks within a span.
func (h *Harness) Between(span types.Span) []types.Mark {
	h.t.Helper()
	marks, err := h.srv.Between(context.Background(), span)
	if err != nil {
		h.t.Fatalf("Between failed: %v", err)
	}
	return marks
}

// Backfill replays the given marks into the timebase's history.
func (h *Harness) Backfill(marks ...types.Mark) types.BackfillResult {
	h.t.Helper()
	ch := make(chan types.Mark, len(marks))
	for _, m := range marks {
		ch <- m
	}
	close(ch)
	result, err := h.srv.Backfill(context.Background(), ch)
	if err != nil {
		h.t.Fatalf("Backfill failed: %v", err)
	}
	return result
}

// MustReject asserts that adjusting by delta fails with a skew error.
func (h *Harness) MustReject(delta types.UniversalTime) {
	h.t.Helper()
	_, err := h.srv.Adjust(context.Background(), types.Adjustment{Delta: delta})
	if err == nil {
		h.t.Fatalf("expected adjustment %s rejected, got applied", delta)
	}
	if _, ok := unitime.IsSkew(err); !ok {
		h.t.Fatalf("expected skew error, got %v", err)
	}
}

// MakeMark creates a Mark at the given whole-second offset with
// the given sequence number.
func MakeMark(seconds int64, seq uint64) types.Mark {
	return types.Mark{
		Time:     types.New(0, seconds, 0),
		Sequence: seq,
	}
}

// MakeSpan creates a Span covering the given whole-second offsets.
func MakeSpan(from, to int64) types.Span {
	return types.Span{
		From: types.New(0, from, 0),
		To:   types.New(0, to, 0),
	}
}
