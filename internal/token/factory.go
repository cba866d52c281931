package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Factory builds and signs claim sets for a given purpose and TTL. It is
// purpose-agnostic beyond embedding the purpose in the subject claim.
type Factory struct {
	signer *Signer
	now    func() time.Time
}

// NewFactory constructs a Factory on top of the signer.
func NewFactory(signer *Signer) *Factory {
	return &Factory{signer: signer, now: time.Now}
}

// Issue mints a signed token carrying the principal identifier, the
// purpose as subject, a fresh jti and an expiry of now+ttl.
func (f *Factory) Issue(purpose Purpose, principalID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token: ttl must be positive, got %s", ttl)
	}
	now := f.now().UTC()
	claims := &Claims{
		PrincipalID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   purpose.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return f.signer.Sign(claims)
}
