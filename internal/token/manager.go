package token

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Metrics observes token lifecycle events. Implementations must be safe
// for concurrent use; a nil Metrics disables recording.
type Metrics interface {
	TokenIssued(purpose string)
	TokenRejected(reason string)
	TokenRevoked()
}

// Manager orchestrates the factory, verifier and denylist behind the
// four lifecycle operations: issue, verify, refresh and revoke.
type Manager struct {
	factory    *Factory
	verifier   *Verifier
	denylist   *Denylist
	accessTTL  time.Duration
	refreshTTL time.Duration
	metrics    Metrics
	logger     *slog.Logger
}

// NewManager constructs a Manager with the two configured lifetimes.
// metrics may be nil.
func NewManager(factory *Factory, verifier *Verifier, denylist *Denylist, accessTTL, refreshTTL time.Duration, metrics Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory:    factory,
		verifier:   verifier,
		denylist:   denylist,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

// IssueAccess mints a short-lived access token for the principal.
func (m *Manager) IssueAccess(principalID string) (string, error) {
	tokenString, err := m.factory.Issue(PurposeAccess, principalID, m.accessTTL)
	if err != nil {
		return "", err
	}
	m.recordIssued(PurposeAccess)
	return tokenString, nil
}

// IssueRefresh mints a long-lived refresh token for the principal.
func (m *Manager) IssueRefresh(principalID string) (string, error) {
	tokenString, err := m.factory.Issue(PurposeRefresh, principalID, m.refreshTTL)
	if err != nil {
		return "", err
	}
	m.recordIssued(PurposeRefresh)
	return tokenString, nil
}

// Verify validates the token against the expected purpose.
func (m *Manager) Verify(ctx context.Context, tokenString string, purpose Purpose) (*Claims, error) {
	claims, err := m.verifier.Verify(ctx, tokenString, purpose)
	if err != nil {
		m.recordRejected(err)
		return nil, err
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated: until it expires or is revoked
// it keeps minting access tokens, so a stolen one stays usable for its
// whole validity window.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := m.Verify(ctx, refreshToken, PurposeRefresh)
	if err != nil {
		return "", err
	}
	return m.IssueAccess(claims.PrincipalID)
}

// RevokeSession revokes both tokens of a session, best effort per
// token. A token that no longer verifies (expired, malformed, already
// revoked) is skipped silently; a client logging out with a stale
// access token must not see logout fail. Store write failures do
// propagate: a logout whose denylist entries were not written has not
// happened.
func (m *Manager) RevokeSession(ctx context.Context, accessToken, refreshToken string) error {
	if err := m.revokeIfValid(ctx, accessToken, PurposeAccess); err != nil {
		return err
	}
	return m.revokeIfValid(ctx, refreshToken, PurposeRefresh)
}

func (m *Manager) revokeIfValid(ctx context.Context, tokenString string, purpose Purpose) error {
	claims, err := m.verifier.Verify(ctx, tokenString, purpose)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}
		m.logger.Debug("skipping revocation of invalid token",
			slog.String("purpose", purpose.String()), slog.Any("error", err))
		return nil
	}
	if err := m.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.TokenRevoked()
	}
	return nil
}

func (m *Manager) recordIssued(purpose Purpose) {
	if m.metrics != nil {
		m.metrics.TokenIssued(purpose.String())
	}
}

func (m *Manager) recordRejected(err error) {
	if m.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, ErrExpiredToken):
		m.metrics.TokenRejected("expired")
	case errors.Is(err, ErrRevokedToken):
		m.metrics.TokenRejected("revoked")
	case errors.Is(err, ErrStoreUnavailable):
		m.metrics.TokenRejected("store_unavailable")
	default:
		m.metrics.TokenRejected("invalid")
	}
}
