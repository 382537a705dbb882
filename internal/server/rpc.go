package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/devmatch/internal/auth"
	svcErr "github.com/oggyb/devmatch/internal/errors"
)

// Method builds one grpc.MethodDesc once the owning service name is known.
type Method func(service string) grpc.MethodDesc

// Unary turns a typed handler into a unary method. Request and response
// types are plain structs encoded by the JSON codec; errors are mapped to
// gRPC statuses before interceptors see them.
//
// Example:
//
//	server.Unary("RecordSwipe", func(ctx context.Context, req *explore.SwipeRequest) (*explore.SwipeResult, error) {
//		...
//	})
func Unary[Req, Resp any](name string, h func(ctx context.Context, req *Req) (*Resp, error)) Method {
	return func(service string) grpc.MethodDesc {
		fullMethod := FullMethod(service, name)

		return grpc.MethodDesc{
			MethodName: name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(Req)
				if err := dec(in); err != nil {
					return nil, err
				}

				call := func(ctx context.Context, req any) (any, error) {
					resp, err := h(ctx, req.(*Req))
					if err != nil {
						return nil, svcErr.Map(err)
					}
					return resp, nil
				}
				if interceptor == nil {
					return call(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
				return interceptor(ctx, in, info, call)
			},
		}
	}
}

// ServiceDesc assembles a hand-written service description. Any
// implementation satisfies HandlerType since handlers are closures.
func ServiceDesc(name string, methods ...Method) *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*any)(nil),
		Methods:     make([]grpc.MethodDesc, 0, len(methods)),
		Streams:     []grpc.StreamDesc{},
		Metadata:    name,
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, m(name))
	}
	return desc
}

// FullMethod returns "/service/method", the form interceptors receive.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// Authed is Unary for methods acting on behalf of the authenticated caller.
// The caller id comes from the auth interceptor; service methods with the
// shape func(ctx, userID, req) plug in directly.
//
// Example:
//
//	server.Authed("ListMatches", svc.ListMatches)
func Authed[Req, Resp any](name string, h func(ctx context.Context, userID string, req Req) (*Resp, error)) Method {
	return Unary(name, func(ctx context.Context, req *Req) (*Resp, error) {
		userID, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		return h(ctx, userID, *req)
	})
}
