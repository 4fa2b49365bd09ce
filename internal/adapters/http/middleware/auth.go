package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/planfold/planfold/internal/adapters/http/dto"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/ports"
)

const (
	headerAuthorization = "Authorization"
	headerUserID        = "X-User-ID"
)

// userIDKey is the context key for the authenticated user id.
type userIDKey struct{}

// WithUserID returns a new context carrying the authenticated user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext extracts the authenticated user id from the context.
// Returns an empty string when the request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// Auth returns middleware that resolves the requesting user. When a provider
// is given, a bearer token is required on every request: it is verified, the
// asserted profile is upserted through the user service, and the stored id
// is placed in the request context. With a nil provider the X-User-ID header
// is trusted as-is, which is only acceptable behind a gateway that strips it
// from external traffic.
func Auth(provider ports.IdentityProvider, users ports.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil {
				if id := r.Header.Get(headerUserID); id != "" {
					r = r.WithContext(WithUserID(r.Context(), id))
				}
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get(headerAuthorization))
			if !ok {
				dto.WriteErrorResponse(w, r, &domain.UnauthorizedError{Action: "access the API"})
				return
			}

			asserted, err := provider.SignIn(r.Context(), token)
			if err != nil {
				dto.WriteErrorResponse(w, r, err)
				return
			}

			stored, err := users.EnsureUser(r.Context(), asserted)
			if err != nil {
				dto.WriteErrorResponse(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), stored.ID)))
		})
	}
}
