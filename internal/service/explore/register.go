package explore

import (
	"google.golang.org/grpc"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/server"
)

// ServiceName is the gRPC service the Explore API is served under.
const ServiceName = "devmatch.v1.ExploreService"

// RecordSwipeMethod is the full gRPC method name subject to swipe rate limiting.
var RecordSwipeMethod = server.FullMethod(ServiceName, "RecordSwipe")

// Registrar ties the Explore service into the gRPC server and the HTTP router
type Registrar struct {
	service *Service
	limiter *server.RateLimiter
}

// NewRegistrar creates a new Registrar for the Explore service.
// limiter may be nil to disable swipe rate limiting on HTTP.
func NewRegistrar(appCtx *app.AppContext, limiter *server.RateLimiter) *Registrar {
	return &Registrar{service: NewExploreService(appCtx), limiter: limiter}
}

// Register attaches the Explore service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(serviceDesc(r.service), r.service)
}

func serviceDesc(svc *Service) *grpc.ServiceDesc {
	return server.ServiceDesc(ServiceName,
		server.Authed("DiscoverUsers", svc.DiscoverUsers),
		server.Authed("RecordSwipe", svc.RecordSwipe),
		server.Authed("ListSwipes", svc.ListSwipes),
		server.Authed("ListMatches", svc.ListMatches),
	)
}
