package apicall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the authenticated test identity whose token is sent with protected calls.
type Principal struct {
	ID     string
	Token  string
	Claims map[string]any
}

// PrincipalProvider returns the test principal, creating it on first use.
// Repeated calls must return the same principal.
type PrincipalProvider interface {
	TestPrincipal(ctx context.Context) (*Principal, error)
}

// PrincipalFunc adapts a function to the PrincipalProvider interface.
type PrincipalFunc func(ctx context.Context) (*Principal, error)

// TestPrincipal calls f.
func (f PrincipalFunc) TestPrincipal(ctx context.Context) (*Principal, error) {
	return f(ctx)
}

// StaticPrincipal always returns the same pre-issued token.
type StaticPrincipal struct {
	Principal Principal
}

// TestPrincipal implements PrincipalProvider.
func (s *StaticPrincipal) TestPrincipal(context.Context) (*Principal, error) {
	return &s.Principal, nil
}

// JWTPrincipalProvider mints a single HS256 token for a test subject and hands out
// the same principal on every call. It is safe for concurrent use.
type JWTPrincipalProvider struct {
	secret  []byte
	subject string
	ttl     time.Duration
	extra   jwt.MapClaims

	mu        sync.Mutex
	principal *Principal
}

// NewJWTPrincipalProvider creates a provider signing with secret. A zero ttl means
// the token carries no expiry.
func NewJWTPrincipalProvider(secret []byte, subject string, ttl time.Duration) (*JWTPrincipalProvider, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if subject == "" {
		subject = "test-user"
	}
	return &JWTPrincipalProvider{secret: secret, subject: subject, ttl: ttl, extra: jwt.MapClaims{}}, nil
}

// WithClaim adds a custom claim to the token. It has no effect once the token is minted.
func (p *JWTPrincipalProvider) WithClaim(name string, value any) *JWTPrincipalProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extra[name] = value
	return p
}

// TestPrincipal implements PrincipalProvider.
func (p *JWTPrincipalProvider) TestPrincipal(ctx context.Context) (*Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.principal != nil {
		return p.principal, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": p.subject,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
	}
	if p.ttl > 0 {
		claims["exp"] = now.Add(p.ttl).Unix()
	}
	for k, v := range p.extra {
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign test principal token: %w", err)
	}

	slog.Debug("JWTPrincipalProvider: minted test principal", "subject", p.subject)
	p.principal = &Principal{ID: p.subject, Token: signed, Claims: claims}
	return p.principal, nil
}
