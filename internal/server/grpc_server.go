package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/config"
	"github.com/oggyb/devmatch/internal/logger"
	"github.com/oggyb/devmatch/internal/metrics"
)

// GRPCOptions carries what the interceptor chain needs.
type GRPCOptions struct {
	Verifier      auth.Verifier
	PublicMethods []string
	Limiter       *RateLimiter
	LimitMethods  []string
	Logger        *slog.Logger
}

// NewGRPCServer builds a server with the interceptor chain
// (logging, metrics, auth, rate limit), the health service and reflection,
// and registers all provided services.
func NewGRPCServer(opts GRPCOptions, registrars ...Registrar) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		loggingInterceptor(opts.Logger),
		metrics.UnaryServerInterceptor(),
	}
	if opts.Verifier != nil {
		interceptors = append(interceptors, auth.UnaryServerInterceptor(opts.Verifier, opts.PublicMethods...))
	}
	if opts.Limiter != nil {
		interceptors = append(interceptors, opts.Limiter.UnaryServerInterceptor(opts.LimitMethods...))
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for name := range grpcServer.GetServiceInfo() {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// enable reflection for easier debugging with grpcurl.
	// JSON-coded services have no proto descriptors: grpcurl can list them
	// but only describe health and reflection itself.
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until ctx
// is canceled, then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, opts GRPCOptions, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := NewGRPCServer(opts, registrars...)

	go func() {
		<-ctx.Done()
		logger.Info("stopping gRPC server")
		grpcServer.GracefulStop()
	}()

	logger.Info("starting gRPC server", "addr", addr)
	return grpcServer.Serve(lis)
}

// loggingInterceptor gives every call a method-scoped logger and logs
// failures that reached the client as Internal.
func loggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := base
		if l == nil {
			l = logger.L()
		}
		l = l.With("method", info.FullMethod)
		ctx = logger.IntoContext(ctx, l)

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		switch code {
		case codes.OK:
			l.Debug("call finished", logger.Since(start))
		case codes.Internal, codes.Unknown:
			l.Error("call failed", "code", code.String(), "err", err, logger.Since(start))
		default:
			l.Debug("call rejected", "code", code.String(), logger.Since(start))
		}
		return resp, err
	}
}
