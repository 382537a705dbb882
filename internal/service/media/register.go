package media

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/server"
)

// ServiceName is the gRPC service the Media API is served under.
const ServiceName = "devmatch.v1.MediaService"

// Registrar ties the Media service into the gRPC server and the HTTP router
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar for the Media service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{service: NewMediaService(appCtx)}
}

// Register attaches the Media service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(serviceDesc(r.service), r.service)
}

func serviceDesc(svc *Service) *grpc.ServiceDesc {
	return server.ServiceDesc(ServiceName,
		server.Unary("CreateUploadURL", func(ctx context.Context, _ *emptypb.Empty) (*UploadURLResult, error) {
			userID, err := auth.RequireUser(ctx)
			if err != nil {
				return nil, err
			}
			return svc.CreateUploadURL(ctx, userID)
		}),
		server.Authed("DeleteImage", svc.DeleteImage),
	)
}
