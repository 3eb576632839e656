package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"userhub/internal/token"
)

// Verifier validates a signed bearer token and returns its claims.
type Verifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Identity is the resolved caller attached to the request context after
// successful token verification.
type Identity struct {
	UserID  string
	IsAdmin bool
}

type identityKey struct{}

// IdentityFromContext retrieves the verified caller identity from the context.
// The second return is false when the request did not pass RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(Identity)
	return ident, ok
}

// WithIdentity returns a context carrying the given identity. Exported for tests.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","message":"%s"}`, errCode, errDesc))
}

// RequireAuth returns middleware that validates bearer tokens and populates the
// context with the caller identity. On failure the request never reaches the
// wrapped handler.
func RequireAuth(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = WithIdentity(ctx, Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route to verified identities carrying the admin flag.
// It must be applied after RequireAuth; a request with no identity is rejected.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident, ok := IdentityFromContext(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}
			if !ident.IsAdmin {
				logger.WarnContext(ctx, "forbidden - admin flag not set",
					"user_id", ident.UserID,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
