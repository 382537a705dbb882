package account

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/server"
)

// ServiceName is the gRPC service the Account API is served under.
const ServiceName = "devmatch.v1.AccountService"

// PublicMethods can be called without a bearer token.
var PublicMethods = []string{
	server.FullMethod(ServiceName, "Register"),
	server.FullMethod(ServiceName, "Login"),
}

// Registrar ties the Account service into the gRPC server and the HTTP router
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar for the Account service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{service: NewAccountService(appCtx)}
}

// Register attaches the Account service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(serviceDesc(r.service), r.service)
}

func serviceDesc(svc *Service) *grpc.ServiceDesc {
	return server.ServiceDesc(ServiceName,
		server.Unary("Register", func(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
			return svc.Register(ctx, *req)
		}),
		server.Unary("Login", func(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
			return svc.Login(ctx, *req)
		}),
		server.Unary("GetMe", func(ctx context.Context, _ *emptypb.Empty) (*profile.Own, error) {
			userID, err := auth.RequireUser(ctx)
			if err != nil {
				return nil, err
			}
			return svc.GetMe(ctx, userID)
		}),
		server.Authed("GetProfile", svc.GetProfile),
		server.Authed("UpdateProfile", svc.UpdateProfile),
		server.Authed("CompleteOnboarding", svc.CompleteOnboarding),
		server.Unary("DeleteAccount", func(ctx context.Context, _ *emptypb.Empty) (*DeleteResult, error) {
			userID, err := auth.RequireUser(ctx)
			if err != nil {
				return nil, err
			}
			return svc.DeleteAccount(ctx, userID)
		}),
		server.Unary("ListProgrammingLanguages", func(ctx context.Context, _ *emptypb.Empty) (*LanguagesResult, error) {
			return svc.ListProgrammingLanguages(ctx)
		}),
		server.Unary("ListJobTitles", func(ctx context.Context, _ *emptypb.Empty) (*JobTitlesResult, error) {
			return svc.ListJobTitles(ctx)
		}),
	)
}
