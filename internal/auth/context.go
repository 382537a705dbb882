package auth

import (
	"context"

	svcErr "github.com/oggyb/devmatch/internal/errors"
)

type ctxKey struct{}

// WithUserID stores the authenticated principal.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFrom returns the authenticated principal, if any.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// RequireUser is what handlers behind the middleware or interceptor call.
func RequireUser(ctx context.Context) (string, error) {
	id, ok := UserIDFrom(ctx)
	if !ok {
		return "", svcErr.Unauthorized("Unauthorized")
	}
	return id, nil
}
