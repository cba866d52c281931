package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Verifier validates tokens end to end: signature, claim completeness,
// purpose and revocation status. The cheap local checks run before the
// remote denylist lookup so malformed tokens never cost a round trip.
type Verifier struct {
	signer   *Signer
	denylist *Denylist
	failOpen bool
	logger   *slog.Logger
}

// NewVerifier constructs a Verifier. failOpen selects the policy for a
// revocation-store outage: false (the default posture) rejects the
// token, true provisionally accepts it and logs the outage.
func NewVerifier(signer *Signer, denylist *Denylist, failOpen bool, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{signer: signer, denylist: denylist, failOpen: failOpen, logger: logger}
}

// Verify checks the token against the expected purpose and returns its
// claims. Failures are one of ErrInvalidToken, ErrExpiredToken,
// ErrRevokedToken or ErrStoreUnavailable.
func (v *Verifier) Verify(ctx context.Context, tokenString string, purpose Purpose) (*Claims, error) {
	claims, err := v.signer.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Complete() {
		return nil, fmt.Errorf("%w: missing required claims", ErrInvalidToken)
	}
	if claims.Subject != purpose.String() {
		return nil, fmt.Errorf("%w: purpose mismatch", ErrInvalidToken)
	}

	revoked, err := v.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		if v.failOpen && errors.Is(err, ErrStoreUnavailable) {
			v.logger.Warn("revocation store unreachable, accepting token",
				slog.String("jti", claims.ID))
			return claims, nil
		}
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}
