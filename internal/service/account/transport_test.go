package account_test

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
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/server"
	"github.com/oggyb/devmatch/internal/service/account"
	"github.com/oggyb/devmatch/internal/service/explore"
)

func dial(t *testing.T, env *apptest.Env) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(server.GRPCOptions{
		Verifier:      env.App.Auth,
		PublicMethods: account.PublicMethods,
		Logger:        env.App.Logger,
	}, account.NewRegistrar(env.App))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(server.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func method(name string) string { return server.FullMethod(account.ServiceName, name) }

func TestGRPC_RegisterLoginGetMe(t *testing.T) {
	env := apptest.New(t)
	conn := dial(t, env)
	ctx := context.Background()

	var me profile.Own
	err := conn.Invoke(ctx, method("GetMe"), &emptypb.Empty{}, &me)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	var reg account.RegisterResult
	err = conn.Invoke(ctx, method("Register"), &account.RegisterRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "alice@test.com", Password: "correct-horse",
	}, &reg)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	require.NoError(t, conn.Invoke(ctx, method("Register"), &account.RegisterRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Password: "correct-horse",
	}, &reg))

	var login account.LoginResult
	err = conn.Invoke(ctx, method("Login"), &account.LoginRequest{Email: "grace@example.com", Password: "wrong-horse"}, &login)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	require.NoError(t, conn.Invoke(ctx, method("Login"), &account.LoginRequest{Email: "grace@example.com", Password: "correct-horse"}, &login))
	assert.Equal(t, reg.User.ID, login.UserID)

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+login.Token)
	require.NoError(t, conn.Invoke(authed, method("GetMe"), &emptypb.Empty{}, &me))
	assert.Equal(t, "grace@example.com", me.Email)
	assert.False(t, me.DoneOnboarding)

	require.NoError(t, conn.Invoke(authed, method("CompleteOnboarding"), &account.OnboardingRequest{
		City: "Arlington", Country: "USA", JobTitle: "Backend Engineer", ProgrammingLanguages: []string{"COBOL"},
	}, &me))
	assert.True(t, me.DoneOnboarding)

	var langs account.LanguagesResult
	require.NoError(t, conn.Invoke(authed, method("ListProgrammingLanguages"), &emptypb.Empty{}, &langs))
	assert.Equal(t, 4, langs.Total)

	var del account.DeleteResult
	require.NoError(t, conn.Invoke(authed, method("DeleteAccount"), &emptypb.Empty{}, &del))
	err = conn.Invoke(authed, method("GetMe"), &emptypb.Empty{}, &me)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHTTP_AccountRoutes(t *testing.T) {
	env := apptest.New(t)
	router := server.NewRouter(
		server.HTTPOptions{Verifier: env.App.Auth, Logger: env.App.Logger},
		account.NewRegistrar(env.App),
		explore.NewRegistrar(env.App, nil),
	)

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/auth/register", `{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(http.MethodPost, "/api/auth/register", `{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","password":"correct-horse"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Account is already in use"}`, rec.Body.String())

	rec = do(http.MethodPost, "/api/auth/login", `{"email":"grace@example.com","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodPost, "/api/auth/login", `{"email":"grace@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login account.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = do(http.MethodGet, "/api/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodGet, "/api/users", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me profile.Own
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "grace@example.com", me.Email)

	rec = do(http.MethodPut, "/api/users", `{"bio":"Compilers","programmingLanguages":["Go"]}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Compilers", me.Bio)

	rec = do(http.MethodGet, "/api/users/"+db.FixtureBob, "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var bob account.ProfileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bob))
	assert.Equal(t, "Bob", bob.FirstName)
	assert.Empty(t, bob.Email)
	assert.NotContains(t, rec.Body.String(), `"match"`)

	rec = do(http.MethodGet, "/api/users/missing", "", login.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the explore route under /users is still reachable
	rec = do(http.MethodGet, "/api/users/discover", "", login.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodPost, "/api/onboarding", `{"city":"Arlington","country":"USA","jobTitle":"Backend Engineer"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/job-titles", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobTitles":[
		{"id":"job-backend","name":"Backend Engineer"},
		{"id":"job-data","name":"Data Scientist"},
		{"id":"job-frontend","name":"Frontend Engineer"}
	],"total":3}`, rec.Body.String())

	rec = do(http.MethodGet, "/api/programming-languages", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodDelete, "/api/users", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Account deleted"}`, rec.Body.String())
}
