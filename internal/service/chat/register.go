package chat

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/server"
)

// ServiceName is the gRPC service the Chat API is served under.
const ServiceName = "devmatch.v1.ChatService"

// Registrar ties the Chat service into the gRPC server and the HTTP router
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar for the Chat service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{service: NewChatService(appCtx)}
}

// Register attaches the Chat service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(serviceDesc(r.service), r.service)
}

func serviceDesc(svc *Service) *grpc.ServiceDesc {
	return server.ServiceDesc(ServiceName,
		server.Authed("CheckConversation", svc.CheckConversation),
		server.Authed("CreateConversation", svc.CreateConversation),
		server.Authed("ListConversations", svc.ListConversations),
		server.Authed("GetConversation", svc.GetConversation),
		server.Authed("PostMessage", svc.PostMessage),
		server.Authed("MarkMessageRead", svc.MarkMessageRead),
		server.Unary("CountUnread", func(ctx context.Context, _ *emptypb.Empty) (*UnreadResult, error) {
			userID, err := auth.RequireUser(ctx)
			if err != nil {
				return nil, err
			}
			return svc.CountUnread(ctx, userID)
		}),
	)
}
