package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Errors returned while resolving a bearer token
var (
	ErrMissingToken = errors.New("no authorization header")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated caller
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// IdentityResolver turns a bearer token into an identity
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// Claims are the JWT claims issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTProvider verifies HS256 tokens signed with the identity provider's shared secret
type JWTProvider struct {
	secret   []byte
	audience string
}

// NewJWTProvider creates a provider; an empty audience disables the audience check
func NewJWTProvider(secret, audience string) *JWTProvider {
	return &JWTProvider{
		secret:   []byte(secret),
		audience: audience,
	}
}

// Resolve validates the token and returns the identity named by its subject
func (p *JWTProvider) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.audience != "" {
		opts = append(opts, jwt.WithAudience(p.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}

// IssueToken signs a token for the user; used by local tooling and tests
func (p *JWTProvider) IssueToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}
	if p.audience != "" {
		claims.Audience = jwt.ClaimStrings{p.audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

type identityKey struct{}

// WithIdentity stores the identity on the context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns the identity stored by WithIdentity
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
