// Package auth issues and verifies bearer tokens, and decides which actions
// a role may perform.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	// Packages
	jwt "github.com/golang-jwt/jwt/v5"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Principal is the authenticated user making a request
type Principal struct {
	User string      `json:"user"`
	Role schema.Role `json:"role"`
}

// Claims are the JWT claims carried by a bearer token
type Claims struct {
	Role schema.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authority signs and verifies tokens with a shared secret
type Authority struct {
	secret []byte
	issuer string
}

type ctxKey struct{}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultIssuer is the token issuer when none is set
	DefaultIssuer = "go-dms"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an authority for the secret. An empty issuer uses DefaultIssuer.
func New(secret []byte, issuer string) (*Authority, error) {
	if len(secret) == 0 {
		return nil, errors.New("missing token secret")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Authority{secret: secret, issuer: issuer}, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// NewToken returns a signed token for a user and role. A zero ttl issues a
// token which does not expire.
func (a *Authority) NewToken(user string, role schema.Role, ttl time.Duration) (string, error) {
	if user == "" {
		return "", httpresponse.ErrBadRequest.With("missing user")
	} else if !role.Valid() {
		return "", httpresponse.ErrBadRequest.Withf("invalid role %q", role)
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user,
			Issuer:   a.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies a token and returns its principal
func (a *Authority) Parse(token string) (Principal, error) {
	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer)); err != nil {
		return Principal{}, httpresponse.Err(http.StatusUnauthorized).With(err.Error())
	}
	if claims.Subject == "" {
		return Principal{}, httpresponse.Err(http.StatusUnauthorized).With("token has no subject")
	} else if !claims.Role.Valid() {
		return Principal{}, httpresponse.Err(http.StatusUnauthorized).Withf("token has invalid role %q", claims.Role)
	}
	return Principal{User: claims.Subject, Role: claims.Role}, nil
}

// Request returns the principal for the bearer token in a request
func (a *Authority) Request(r *http.Request) (Principal, error) {
	token := BearerToken(r)
	if token == "" {
		return Principal{}, httpresponse.Err(http.StatusUnauthorized).With("missing bearer token")
	}
	return a.Parse(token)
}

// BearerToken returns the token from an Authorization header, or an empty
// string
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// WithPrincipal returns a context carrying the principal
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal carried by the context
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (p Principal) String() string {
	return fmt.Sprintf("%s (%s)", p.User, p.Role)
}
