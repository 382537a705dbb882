package chat_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oggyb/devmatch/internal/app/apptest"
	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/server"
	"github.com/oggyb/devmatch/internal/service/chat"
)

func bearer(t *testing.T, env *apptest.Env, userID string) string {
	t.Helper()
	token, _, err := env.App.Auth.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGRPC_ChatFlow(t *testing.T) {
	env := apptest.New(t)
	m := matchOf(t, env, db.FixtureAlice, db.FixtureBob)

	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(server.GRPCOptions{Verifier: env.App.Auth, Logger: env.App.Logger}, chat.NewRegistrar(env.App))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(server.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	method := func(name string) string { return server.FullMethod(chat.ServiceName, name) }
	alice := metadata.AppendToOutgoingContext(context.Background(), "authorization", bearer(t, env, db.FixtureAlice))
	bob := metadata.AppendToOutgoingContext(context.Background(), "authorization", bearer(t, env, db.FixtureBob))
	carol := metadata.AppendToOutgoingContext(context.Background(), "authorization", bearer(t, env, db.FixtureCarol))

	var conv chat.ConversationStub
	require.NoError(t, conn.Invoke(alice, method("CreateConversation"),
		&chat.CreateConversationRequest{MatchID: m.ID, InitialMessage: "hi"}, &conv))

	var detail chat.ConversationDetail
	err = conn.Invoke(carol, method("GetConversation"), &chat.GetConversationRequest{ID: conv.ID}, &detail)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	require.NoError(t, conn.Invoke(bob, method("GetConversation"), &chat.GetConversationRequest{ID: conv.ID}, &detail))
	require.Len(t, detail.Messages, 1)

	var unread chat.UnreadResult
	require.NoError(t, conn.Invoke(bob, method("CountUnread"), &emptypb.Empty{}, &unread))
	assert.EqualValues(t, 1, unread.Count)

	var read chat.MessageView
	err = conn.Invoke(alice, method("MarkMessageRead"), &chat.MarkMessageReadRequest{ID: detail.Messages[0].ID}, &read)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	require.NoError(t, conn.Invoke(bob, method("MarkMessageRead"), &chat.MarkMessageReadRequest{ID: detail.Messages[0].ID}, &read))
	assert.True(t, read.IsRead)
}

func TestHTTP_ChatRoutes(t *testing.T) {
	env := apptest.New(t)
	m := matchOf(t, env, db.FixtureAlice, db.FixtureBob)
	router := server.NewRouter(server.HTTPOptions{Verifier: env.App.Auth, Logger: env.App.Logger}, chat.NewRegistrar(env.App))

	do := func(method, path, body, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", bearer(t, env, userID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/api/conversations/check?userId="+db.FixtureBob, "", db.FixtureAlice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":false,"conversation":null,"hasMessages":false}`, rec.Body.String())

	rec = do(http.MethodPost, "/api/conversations", `{"matchId":"`+m.ID+`"}`, db.FixtureAlice)
	require.Equal(t, http.StatusCreated, rec.Code)
	var conv chat.ConversationStub
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))

	rec = do(http.MethodPost, "/api/messages", `{"conversationId":"`+conv.ID+`","content":""}`, db.FixtureAlice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"content is required"}`, rec.Body.String())

	rec = do(http.MethodPost, "/api/messages", `{"conversationId":"`+conv.ID+`","content":"hey"}`, db.FixtureAlice)
	require.Equal(t, http.StatusCreated, rec.Code)
	var msg chat.MessageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))

	rec = do(http.MethodGet, "/api/messages/unread", "", db.FixtureBob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = do(http.MethodPatch, "/api/messages/"+msg.ID, "", db.FixtureBob)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/conversations", "", db.FixtureBob)
	require.Equal(t, http.StatusOK, rec.Code)
	var list chat.ListConversationsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Conversations, 1)
	assert.Zero(t, list.Conversations[0].UnreadCount)

	rec = do(http.MethodGet, "/api/conversations/"+conv.ID, "", db.FixtureCarol)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
