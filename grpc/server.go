package unitimegrpc

import (
	"context"
	"io"
	"net"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/server"
	"github.com/blockberries/unitime/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ TimebaseServiceServer = (*GRPCServer)(nil)

// GRPCServer wraps a timebase as a gRPC server. No type conversion
// is needed — domain types are serialized directly via cramberry.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer creates a gRPC server wrapping the given timebase.
func NewGRPCServer(tb unitime.Timebase) *GRPCServer {
	return &GRPCServer{
		srv: server.New(tb),
	}
}

// Register adds the timebase service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterTimebaseServiceServer(gs, s)
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *GRPCServer) Stop(gs *grpc.Server) {
	gs.GracefulStop()
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

// --- Timebase RPCs ---

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.HandshakeResponse, error) {
	resp, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCServer) Now(ctx context.Context, _ *NowRequest) (*types.Mark, error) {
	mark, err := s.srv.Now(ctx)
	if err != nil {
		return nil, err
	}
	return &mark, nil
}

func (s *GRPCServer) Resolve(ctx context.Context, raw *types.UniversalTime) (*types.UniversalTime, error) {
	resolved, err := s.srv.Resolve(ctx, *raw)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// --- Adjuster RPC ---

func (s *GRPCServer) Adjust(ctx context.Context, adj *types.Adjustment) (*types.AdjustResult, error) {
	result, err := s.srv.Adjust(ctx, *adj)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Historian RPCs ---

func (s *GRPCServer) Between(ctx context.Context, span *types.Span) (*BetweenResponse, error) {
	marks, err := s.srv.Between(ctx, *span)
	if err != nil {
		return nil, err
	}
	return &BetweenResponse{Marks: marks}, nil
}

func (s *GRPCServer) Backfill(stream grpc.ServerStream) error {
	marks := make(chan types.Mark)

	// Read marks in background; the channel closes on EOF so the
	// historian sees a bounded stream.
	go func() {
		defer close(marks)
		for {
			mark := new(types.Mark)
			if err := stream.RecvMsg(mark); err != nil {
				if err == io.EOF {
					return
				}
				return
			}
			marks <- *mark
		}
	}()

	result, err := s.srv.Backfill(stream.Context(), marks)
	if err != nil {
		return err
	}

	return stream.SendMsg(&result)
}

// --- Streamer RPC ---

func (s *GRPCServer) Subscribe(req *types.TickRequest, stream grpc.ServerStream) error {
	ch, err := s.srv.Subscribe(stream.Context(), *req)
	if err != nil {
		return err
	}
	for mark := range ch {
		if err := stream.SendMsg(&mark); err != nil {
			return err
		}
	}
	return nil
}
