package unitimegrpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/blockberries/unitime/example/manual"
	"github.com/blockberries/unitime/example/system"
	unitimegrpc "github.com/blockberries/unitime/grpc"
	"github.com/blockberries/unitime/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// startServer starts a gRPC server on a random port and returns
// the listener address and a cleanup function.
func startServer(t *testing.T, gs *unitimegrpc.GRPCServer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	gs.Register(s)

	go func() {
		if err := s.Serve(lis); err != nil {
			// Ignore errors from graceful stop.
		}
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
	}
}

func dial(t *testing.T, addr string) *unitimegrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := unitimegrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func TestGRPC_Manual_Boundary(t *testing.T) {
	tb := manual.New()
	gs := unitimegrpc.NewGRPCServer(tb)
	addr, cleanup := startServer(t, gs)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx := context.Background()

	resp, err := client.Handshake(ctx, types.HandshakeRequest{EpochYear: manual.EpochYear})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if resp.EpochYear != manual.EpochYear {
		t.Fatalf("expected epoch year %d, got %d", manual.EpochYear, resp.EpochYear)
	}
	if resp.Capabilities != types.CapAdjust {
		t.Fatalf("manual should declare Adjust only, got %s", resp.Capabilities)
	}

	// Now reflects the clock set behind the server's back.
	tb.Advance(types.New(1, 120, 0))
	mark, err := client.Now(ctx)
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if !mark.Time.Equal(types.New(1, 120, 0)) {
		t.Fatalf("expected 1d 120s, got %s", mark.Time)
	}

	// Resolve round-trips raw components through the wire.
	u, err := client.Resolve(ctx, types.UniversalTime{Seconds: -1, NanoSeconds: 1})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u != types.New(0, -1, 1) {
		t.Fatalf("unexpected resolve result: %+v", u)
	}

	// Adjuster.
	adj := client.AsAdjuster()
	if adj == nil {
		t.Fatal("AsAdjuster returned nil")
	}
	result, err := adj.Adjust(ctx, types.Adjustment{
		Delta:  types.New(0, 10, 0),
		Reason: "wire test",
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if !result.Applied.Equal(types.New(0, 10, 0)) {
		t.Fatalf("expected applied 10s, got %s", result.Applied)
	}
	if !result.Total.Equal(types.New(0, 10, 0)) {
		t.Fatalf("expected total 10s, got %s", result.Total)
	}

	mark, err = client.Now(ctx)
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if !mark.Time.Equal(types.New(1, 130, 0)) {
		t.Fatalf("expected 1d 130s after adjust, got %s", mark.Time)
	}
}

func TestGRPC_Manual_SkewRejected(t *testing.T) {
	gs := unitimegrpc.NewGRPCServer(manual.New())
	addr, cleanup := startServer(t, gs)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Handshake(ctx, types.HandshakeRequest{}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	_, err := client.AsAdjuster().Adjust(ctx, types.Adjustment{
		Delta: types.New(1, 0, 0),
	})
	if err == nil {
		t.Fatal("expected skew rejection over the wire")
	}
}

func TestGRPC_System_AllCapabilities(t *testing.T) {
	tb := system.New()
	base := time.Date(2010, time.January, 1, 6, 0, 0, 0, time.UTC)
	tb.SetClock(func() time.Time { return base })

	gs := unitimegrpc.NewGRPCServer(tb)
	addr, cleanup := startServer(t, gs)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx := context.Background()

	resp, err := client.Handshake(ctx, types.HandshakeRequest{})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	caps := resp.Capabilities
	if !caps.Has(types.CapStream) {
		t.Error("missing CapStream")
	}
	if !caps.Has(types.CapAdjust) {
		t.Error("missing CapAdjust")
	}
	if !caps.Has(types.CapHistory) {
		t.Error("missing CapHistory")
	}

	// Historian - Backfill then Between.
	hist := client.AsHistorian()
	if hist == nil {
		t.Fatal("AsHistorian returned nil")
	}

	marks := make(chan types.Mark, 3)
	marks <- types.Mark{Time: types.New(0, 100, 0), Sequence: 1}
	marks <- types.Mark{Time: types.New(0, 200, 0), Sequence: 2}
	marks <- types.Mark{Time: types.UniversalTime{Seconds: -7}, Sequence: 3}
	close(marks)

	bf, err := hist.Backfill(ctx, marks)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if bf.Accepted != 2 || bf.Rejected != 1 {
		t.Fatalf("expected 2 accepted / 1 rejected, got %d / %d", bf.Accepted, bf.Rejected)
	}

	got, err := hist.Between(ctx, types.Span{
		From: types.New(0, 50, 0),
		To:   types.New(0, 250, 0),
	})
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 marks in span, got %d", len(got))
	}
	if !got[0].Time.Equal(types.New(0, 100, 0)) || !got[1].Time.Equal(types.New(0, 200, 0)) {
		t.Fatalf("unexpected marks: %v", got)
	}
}

func TestGRPC_System_Subscribe(t *testing.T) {
	gs := unitimegrpc.NewGRPCServer(system.New())
	addr, cleanup := startServer(t, gs)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Handshake(ctx, types.HandshakeRequest{}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	str := client.AsStreamer()
	if str == nil {
		t.Fatal("AsStreamer returned nil")
	}
	ch, err := str.Subscribe(ctx, types.TickRequest{
		Interval: types.New(0, 0, 1e6),
		Count:    3,
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	var got []types.Mark
	for mark := range ch {
		got = append(got, mark)
		if len(got) == 3 {
			break
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 streamed marks, got %d", len(got))
	}
	for i, mark := range got {
		if !mark.Time.IsCanonical() {
			t.Errorf("streamed mark %d not canonical: %+v", i, mark.Time)
		}
	}
}

func TestGRPC_ManualHidesUnimplemented(t *testing.T) {
	gs := unitimegrpc.NewGRPCServer(manual.New())
	addr, cleanup := startServer(t, gs)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	if _, err := client.Handshake(context.Background(), types.HandshakeRequest{}); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	if client.AsStreamer() != nil {
		t.Error("expected nil Streamer for manual timebase")
	}
	if client.AsHistorian() != nil {
		t.Error("expected nil Historian for manual timebase")
	}
	if client.Capabilities() != types.CapAdjust {
		t.Errorf("expected Adjust only, got %s", client.Capabilities())
	}
}
