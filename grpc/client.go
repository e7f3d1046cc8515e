package unitimegrpc

import (
	"context"
	"fmt"
	"io"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/server"
	"github.com/blockberries/unitime/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ unitime.Connection = (*Client)(nil)

// Client implements unitime.Connection for remote timebases over
// gRPC using cramberry serialization. No protobuf types or
// conversion layer required.
type Client struct {
	cc    *grpc.ClientConn
	caps  types.Capabilities
	guard *server.TimebaseGuard
}

// Dial connects to a remote timebase.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("unitime client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: server.NewTimebaseGuard(),
	}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// --- Timebase ---

func (c *Client) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	c.guard.AcquireHandshake()

	resp := new(types.HandshakeResponse)
	err := c.cc.Invoke(ctx, fullMethod("Handshake"), &req, resp)
	if err != nil {
		c.guard.FailHandshake()
		return types.HandshakeResponse{}, err
	}

	c.caps = resp.Capabilities
	c.guard.CompleteHandshake()
	return *resp, nil
}

func (c *Client) Now(ctx context.Context) (types.Mark, error) {
	c.guard.CheckConcurrent()

	req := &NowRequest{}
	resp := new(types.Mark)
	if err := c.cc.Invoke(ctx, fullMethod("Now"), req, resp); err != nil {
		return types.Mark{}, err
	}
	return *resp, nil
}

func (c *Client) Resolve(ctx context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	c.guard.CheckConcurrent()

	resp := new(types.UniversalTime)
	if err := c.cc.Invoke(ctx, fullMethod("Resolve"), &raw, resp); err != nil {
		return types.UniversalTime{}, err
	}
	return *resp, nil
}

// --- Capability Accessors ---

func (c *Client) Capabilities() types.Capabilities { return c.caps }

func (c *Client) AsStreamer() unitime.Streamer {
	if c.caps.Has(types.CapStream) {
		return &clientStreamer{c}
	}
	return nil
}

func (c *Client) AsAdjuster() unitime.Adjuster {
	if c.caps.Has(types.CapAdjust) {
		return &clientAdjuster{c}
	}
	return nil
}

func (c *Client) AsHistorian() unitime.Historian {
	if c.caps.Has(types.CapHistory) {
		return &clientHistorian{c}
	}
	return nil
}

// --- Adjuster wrapper ---

type clientAdjuster struct{ c *Client }

func (w *clientAdjuster) Adjust(ctx context.Context, adj types.Adjustment) (types.AdjustResult, error) {
	w.c.guard.AcquireAdjust()

	resp := new(types.AdjustResult)
	err := w.c.cc.Invoke(ctx, fullMethod("Adjust"), &adj, resp)
	if err != nil {
		w.c.guard.FailAdjust()
		return types.AdjustResult{}, err
	}

	w.c.guard.CompleteAdjust()
	return *resp, nil
}

// --- Streamer wrapper ---

type clientStreamer struct{ c *Client }

func (w *clientStreamer) Subscribe(ctx context.Context, req types.TickRequest) (<-chan types.Mark, error) {
	stream, err := w.c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "Subscribe",
		ServerStreams: true,
	}, fullMethod("Subscribe"))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	ch := make(chan types.Mark)
	go func() {
		defer close(ch)
		for {
			mark := new(types.Mark)
			if err := stream.RecvMsg(mark); err != nil {
				if err == io.EOF {
					return
				}
				return
			}
			select {
			case ch <- *mark:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// --- Historian wrapper ---

type clientHistorian struct{ c *Client }

func (w *clientHistorian) Between(ctx context.Context, span types.Span) ([]types.Mark, error) {
	resp := new(BetweenResponse)
	if err := w.c.cc.Invoke(ctx, fullMethod("Between"), &span, resp); err != nil {
		return nil, err
	}
	return resp.Marks, nil
}

func (w *clientHistorian) Backfill(ctx context.Context, marks <-chan types.Mark) (types.BackfillResult, error) {
	stream, err := w.c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "Backfill",
		ClientStreams: true,
	}, fullMethod("Backfill"))
	if err != nil {
		return types.BackfillResult{}, err
	}

	for mark := range marks {
		m := mark // capture for pointer
		if err := stream.SendMsg(&m); err != nil {
			return types.BackfillResult{}, err
		}
	}

	if err := stream.CloseSend(); err != nil {
		return types.BackfillResult{}, err
	}

	result := new(types.BackfillResult)
	if err := stream.RecvMsg(result); err != nil {
		return types.BackfillResult{}, err
	}
	return *result, nil
}
