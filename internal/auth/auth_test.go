package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/devmatch/internal/config"
)

func newTestIssuer(ttl time.Duration) *Issuer {
	return NewIssuer(config.AuthConfig{JWTSecret: "super-secret", TokenTTL: ttl})
}

func TestIssueAndVerify(t *testing.T) {
	iss := newTestIssuer(time.Hour)

	tok, exp, err := iss.Issue("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	uid, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", uid)
}

func TestVerify_Rejects(t *testing.T) {
	iss := newTestIssuer(time.Hour)
	tok, _, err := iss.Issue("u1")
	require.NoError(t, err)

	other := NewIssuer(config.AuthConfig{JWTSecret: "wrong-secret", TokenTTL: time.Hour})
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	_, err = iss.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken, "malformed")

	expired := newTestIssuer(time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("u1")
	require.NoError(t, err)
	_, err = iss.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

func TestMiddleware(t *testing.T) {
	iss := newTestIssuer(time.Hour)
	tok, _, err := iss.Issue("u-42")
	require.NoError(t, err)

	var seen string
	h := Middleware(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = RequireUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-42", seen)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	iss := newTestIssuer(time.Hour)
	tok, _, err := iss.Issue("u-7")
	require.NoError(t, err)

	ic := UnaryServerInterceptor(iss, "/devmatch.v1.AccountService/Login")
	handler := func(ctx context.Context, _ any) (any, error) {
		return RequireUser(ctx)
	}

	// public method needs no token
	_, err = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/devmatch.v1.AccountService/Login"},
		func(ctx context.Context, _ any) (any, error) { return "ok", nil })
	require.NoError(t, err)

	// missing token
	_, err = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/devmatch.v1.ChatService/CountUnread"}, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	// valid token
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	got, err := ic(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/devmatch.v1.ChatService/CountUnread"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "u-7", got)
}

func TestRequireUser_Missing(t *testing.T) {
	_, err := RequireUser(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken))
}
