// Package auth verifies the bearer tokens sent to the render endpoint.
//
// Tokens are HS256 JWTs signed with a shared secret, the format issued by
// Supabase Auth: the subject is the user id, with email and role claims and an
// "authenticated" audience.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrMissingToken = errors.New("bearer token is required")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// leeway absorbs clock skew between the issuer and this service.
const leeway = 30 * time.Second

// Claims are the token claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Verifier validates signed tokens.
type Verifier struct {
	secret   []byte
	audience string
	now      func() time.Time
}

// NewVerifier creates a Verifier for tokens signed with secret. A non-empty
// audience must appear in the token's aud claim.
func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		now:      time.Now,
	}
}

// Verify parses and validates token. Expiry is mandatory.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value. A value
// without the "Bearer" scheme is taken as the raw token.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if scheme, rest, _ := strings.Cut(header, " "); strings.EqualFold(scheme, "bearer") {
		header = strings.TrimSpace(rest)
	}
	if header == "" {
		return "", ErrMissingToken
	}
	return header, nil
}
