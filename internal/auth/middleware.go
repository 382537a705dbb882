package auth

import (
	"net/http"
	"strings"

	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/logger"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

// Middleware protects routes with a bearer token and puts the user id
// and a user-scoped logger into the request context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				respond.Error(w, r, svcErr.Unauthorized("Missing or invalid authorization header"))
				return
			}

			userID, err := v.Verify(token)
			if err != nil {
				respond.Error(w, r, svcErr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = logger.WithUser(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
