// Package identity verifies bearer tokens and maps them to account
// profiles. The verifier trusts HS256 tokens signed with a shared secret and
// reads the profile from the standard subject/email claims.
package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/user"
	"github.com/planfold/planfold/internal/ports"
)

// Compile-time interface check.
var _ ports.IdentityProvider = (*JWTProvider)(nil)

// Config holds token verification settings.
type Config struct {
	// Secret is the HS256 signing secret shared with the token issuer.
	Secret string

	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string

	// Audience, when non-empty, must be present in the token's aud claim.
	Audience string
}

type profileClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// JWTProvider implements ports.IdentityProvider over stateless bearer
// tokens. "Session" state is only the subscriber notifications: SignIn
// broadcasts the asserted user, SignOut broadcasts nil.
type JWTProvider struct {
	parser *jwt.Parser
	secret []byte

	mu          sync.Mutex
	nextID      uint64
	subscribers map[uint64]func(*user.User)
}

// NewJWTProvider builds a verifier for HS256 tokens signed with cfg.Secret.
func NewJWTProvider(cfg Config) *JWTProvider {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTProvider{
		parser:      jwt.NewParser(opts...),
		secret:      []byte(cfg.Secret),
		subscribers: make(map[uint64]func(*user.User)),
	}
}

// SignIn verifies the token and returns the profile it asserts. The user id
// is the subject claim, so repeated sign-ins by the same account map to the
// same stored profile.
func (p *JWTProvider) SignIn(ctx context.Context, credential string) (*user.User, error) {
	_ = ctx

	claims := &profileClaims{}
	parsed, err := p.parser.ParseWithClaims(strings.TrimSpace(credential), claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, &domain.UnauthorizedError{Action: "sign in"}
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, &domain.UnauthorizedError{Action: "sign in"}
	}

	u := &user.User{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		u.PhotoURL = &picture
	}

	p.broadcast(u)
	return u, nil
}

// SignOut broadcasts the signed-out state to subscribers. Tokens are
// stateless, so there is nothing to revoke server-side.
func (p *JWTProvider) SignOut(ctx context.Context) error {
	_ = ctx
	p.broadcast(nil)
	return nil
}

// Subscribe registers a callback for sign-in state changes and returns an
// idempotent unsubscribe function.
func (p *JWTProvider) Subscribe(callback func(*user.User)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subscribers[id] = callback
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

func (p *JWTProvider) broadcast(u *user.User) {
	p.mu.Lock()
	callbacks := make([]func(*user.User), 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		callbacks = append(callbacks, cb)
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(u)
	}
}
