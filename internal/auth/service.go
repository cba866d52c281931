package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/shared"
	"github.com/veridian-id/veridian/internal/token"
)

// Mailer delivers verification emails out of band.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, code string) error
}

// Service orchestrates accounts, authorization and the token lifecycle
// behind the authentication flows.
type Service struct {
	accounts *accounts.Service
	authz    *authz.Service
	tokens   *token.Manager
	verifier *accounts.EmailVerifier
	mailer   Mailer
	audit    shared.AuditRecorder
	logger   *slog.Logger
}

// NewService constructs a Service. mailer and audit may be nil; the
// flows then skip email delivery and audit recording.
func NewService(accountsSvc *accounts.Service, authzSvc *authz.Service, tokens *token.Manager, verifier *accounts.EmailVerifier, mailer Mailer, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts: accountsSvc,
		authz:    authzSvc,
		tokens:   tokens,
		verifier: verifier,
		mailer:   mailer,
		audit:    audit,
		logger:   logger,
	}
}

// Login authenticates credentials, runs the account-state gate and
// issues a fresh token pair. The gate's status-specific reason is
// logged and audited, never returned to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		s.recordAudit(ctx, shared.AuditEntry{Action: shared.AuditLoginDenied, Subject: email})
		return TokenPair{}, err
	}

	snap, err := s.authz.Load(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := accounts.EnsureAccess(user, snap.IsBypass()); err != nil {
		s.logger.Info("login denied by account gate",
			slog.Int64("user_id", user.ID), slog.Any("reason", err))
		s.recordAudit(ctx, shared.AuditEntry{ActorID: user.ID, Action: shared.AuditLoginDenied, Subject: user.Email})
		return TokenPair{}, err
	}

	principalID := strconv.FormatInt(user.ID, 10)
	access, err := s.tokens.IssueAccess(principalID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(principalID)
	if err != nil {
		return TokenPair{}, err
	}

	s.recordAudit(ctx, shared.AuditEntry{ActorID: user.ID, Action: shared.AuditLoginSucceeded, Subject: user.Email})
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token is returned unchanged (no rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	access, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: "Bearer"}, nil
}

// Logout revokes both session tokens, best effort per token. The audit
// actor is resolved from the access token before revocation; afterwards
// the token is on the denylist and no longer verifies.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	actorID := int64(0)
	if claims, err := s.tokens.Verify(ctx, accessToken, token.PurposeAccess); err == nil {
		actorID, _ = strconv.ParseInt(claims.PrincipalID, 10, 64)
	}
	if err := s.tokens.RevokeSession(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{ActorID: actorID, Action: shared.AuditLogout})
	return nil
}

// Register creates a pending account and sends the verification email.
func (s *Service) Register(ctx context.Context, email, password string) (*accounts.User, error) {
	user, err := s.accounts.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	code, err := s.verifier.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(ctx, user.Email, code); err != nil {
			// The account exists either way; the code can be re-sent.
			s.logger.Error("queue verification email",
				slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}

	s.recordAudit(ctx, shared.AuditEntry{ActorID: user.ID, Action: shared.AuditRegistered, Subject: user.Email})
	return user, nil
}

// VerifyEmail consumes a verification code and activates the account.
func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	userID, err := s.verifier.Confirm(ctx, code)
	if err != nil {
		return err
	}
	if err := s.accounts.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{ActorID: userID, Action: shared.AuditEmailVerified})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, entry shared.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("record audit entry", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
