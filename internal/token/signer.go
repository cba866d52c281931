package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs and parses claim sets with a single pinned HMAC algorithm.
// Tokens signed with any other algorithm are rejected outright.
type Signer struct {
	secret []byte
	method jwt.SigningMethod
}

// NewSigner constructs a Signer for the given secret and algorithm name
// (HS256, HS384 or HS512).
func NewSigner(secret string, algorithm string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret required")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}
	return &Signer{secret: []byte(secret), method: method}, nil
}

// Sign produces a signed token string for the claims.
func (s *Signer) Sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and structure of a token string and
// returns its claims. Expiry is surfaced as ErrExpiredToken, distinct
// from every other parse failure, so callers can log the two apart.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
