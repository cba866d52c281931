// Package token implements the signed-credential lifecycle: issuance,
// verification, refresh and revocation of short-lived bearer tokens.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose declares what a token may be used for. The purpose is embedded
// in the subject claim at issuance and enforced on verification, so an
// access token is never accepted where a refresh token is expected.
type Purpose string

const (
	// PurposeAccess marks short-lived API credentials.
	PurposeAccess Purpose = "access"
	// PurposeRefresh marks long-lived credentials exchanged for new access tokens.
	PurposeRefresh Purpose = "refresh"
)

// String returns the claim value for the purpose.
func (p Purpose) String() string {
	return string(p)
}

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, wrong
	// purposes and missing claims.
	ErrInvalidToken = errors.New("token: invalid token")
	// ErrExpiredToken marks a token whose signature verifies but whose
	// validity window has passed.
	ErrExpiredToken = errors.New("token: expired token")
	// ErrRevokedToken marks a token that was explicitly revoked.
	ErrRevokedToken = errors.New("token: revoked token")
	// ErrStoreUnavailable indicates the revocation store could not be reached.
	ErrStoreUnavailable = errors.New("token: revocation store unavailable")
)

// Claims is the self-contained claim set carried by every token.
// Subject holds the purpose, ID the per-issuance identifier (jti).
type Claims struct {
	PrincipalID string `json:"id"`
	jwt.RegisteredClaims
}

// Complete reports whether the required claim set is fully present.
func (c *Claims) Complete() bool {
	return c.Subject != "" && c.ID != "" && c.IssuedAt != nil && c.ExpiresAt != nil
}
