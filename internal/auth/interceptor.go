package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/devmatch/internal/logger"
)

// UnaryServerInterceptor requires a valid "authorization: Bearer <token>"
// metadata entry on every method except the public ones.
func UnaryServerInterceptor(v Verifier, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]struct{}, len(public))
	for _, m := range public {
		open[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := open[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		var token string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				token = bearerToken(values[0])
			}
		}
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		userID, err := v.Verify(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = WithUserID(ctx, userID)
		ctx = logger.WithUser(ctx, userID)
		return handler(ctx, req)
	}
}
