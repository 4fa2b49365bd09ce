package ports

import (
	"context"

	"github.com/planfold/planfold/internal/domain/user"
)

// IdentityProvider is the outbound port for the external authentication
// service. The core consumes identity only through this contract; the
// concrete provider (token verifier, OAuth client, ...) lives in an adapter.
type IdentityProvider interface {
	// SignIn authenticates the given credential and returns the account
	// profile it asserts. Returns a domain.ErrUnauthorized error when the
	// credential is invalid or expired.
	SignIn(ctx context.Context, credential string) (*user.User, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// Subscribe registers a callback invoked with the signed-in user after
	// each successful SignIn and with nil after SignOut. The returned
	// function cancels the subscription and is idempotent.
	Subscribe(callback func(*user.User)) func()
}
