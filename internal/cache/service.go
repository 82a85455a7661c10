package cache

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName    = "kpsync.HandleCache"
	lookupMethod   = "/" + serviceName + "/Lookup"
	registerMethod = "/" + serviceName + "/Register"
	pingMethod     = "/" + serviceName + "/Ping"
)

// cacheService is the server-side contract registered with gRPC.
type cacheService interface {
	Lookup(ctx context.Context, req *LookupRequest) (*LookupResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// serviceDesc is a hand-written descriptor; with the JSON codec it plays
// the role protoc-generated registration code normally would.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*cacheService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Lookup", Handler: lookupHandler},
		{MethodName: "Register", Handler: registerHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cache",
}

func lookupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LookupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(cacheService).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: lookupMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(cacheService).Lookup(ctx, req.(*LookupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func registerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(cacheService).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: registerMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(cacheService).Register(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(cacheService).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: pingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(cacheService).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}
