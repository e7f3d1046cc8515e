package unitimegrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/unitime/types"

	"google.golang.org/grpc"
)

const serviceName = "github.com/blockberries/unitime.v1.TimebaseService"

// TimebaseServiceServer is the server-side interface for the
// timebase gRPC service.
type TimebaseServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.HandshakeResponse, error)
	Now(context.Context, *NowRequest) (*types.Mark, error)
	Resolve(context.Context, *types.UniversalTime) (*types.UniversalTime, error)
	Adjust(context.Context, *types.Adjustment) (*types.AdjustResult, error)
	Between(context.Context, *types.Span) (*BetweenResponse, error)
	Subscribe(*types.TickRequest, grpc.ServerStream) error
	Backfill(grpc.ServerStream) error
}

// RegisterTimebaseServiceServer registers the TimebaseServiceServer
// on a gRPC server.
func RegisterTimebaseServiceServer(s *grpc.Server, srv TimebaseServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerHandshake(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.HandshakeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(TimebaseServiceServer).Handshake(ctx, req)
}

func handlerNow(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(NowRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(TimebaseServiceServer).Now(ctx, req)
}

func handlerResolve(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.UniversalTime)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(TimebaseServiceServer).Resolve(ctx, req)
}

func handlerAdjust(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.Adjustment)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(TimebaseServiceServer).Adjust(ctx, req)
}

func handlerBetween(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.Span)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(TimebaseServiceServer).Between(ctx, req)
}

func handlerSubscribe(srv any, stream grpc.ServerStream) error {
	req := new(types.TickRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(TimebaseServiceServer).Subscribe(req, stream)
}

func handlerBackfill(srv any, stream grpc.ServerStream) error {
	return srv.(TimebaseServiceServer).Backfill(stream)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the
// timebase service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TimebaseServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handshake", Handler: handlerHandshake},
		{MethodName: "Now", Handler: handlerNow},
		{MethodName: "Resolve", Handler: handlerResolve},
		{MethodName: "Adjust", Handler: handlerAdjust},
		{MethodName: "Between", Handler: handlerBetween},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       handlerSubscribe,
			ServerStreams: true,
			ClientStreams: false,
		},
		{
			StreamName:    "Backfill",
			Handler:       handlerBackfill,
			ServerStreams: false,
			ClientStreams: true,
		},
	},
	Metadata: "github.com/blockberries/unitime/v1/service.cram",
}
