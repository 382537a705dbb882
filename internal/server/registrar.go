package server

import (
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// RouteRegistrar mounts a service's HTTP routes. Routes are registered on
// a router that already enforces authentication, except the ones a
// registrar mounts through PublicRoutes.
type RouteRegistrar interface {
	Routes(r chi.Router)
}

// PublicRouteRegistrar is implemented by registrars that expose routes
// reachable without a token (login, registration).
type PublicRouteRegistrar interface {
	PublicRoutes(r chi.Router)
}
