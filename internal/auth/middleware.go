package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/token"
)

// Middleware authenticates bearer tokens and resolves the caller's
// authorization snapshot for downstream permission checks.
type Middleware struct {
	Tokens   *token.Manager
	Accounts *accounts.Service
	Authz    *authz.Service
	Logger   *slog.Logger
}

// RequireAuth verifies the Authorization header, loads the principal,
// runs the account-state gate and stores user plus snapshot in the
// request context. Every failure surfaces as a bare 401/403; the
// distinction between invalid, expired and revoked tokens stays in the
// logs.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bearer := bearerToken(r)
		if bearer == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, err := m.Tokens.Verify(ctx, bearer, token.PurposeAccess)
		if err != nil {
			m.log().Debug("bearer token rejected", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(claims.PrincipalID, 10, 64)
		if err != nil {
			m.log().Warn("malformed principal claim", slog.String("value", claims.PrincipalID))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		user, err := m.Accounts.Get(ctx, userID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		snap, err := m.Authz.Load(ctx, user.ID)
		if err != nil {
			m.log().Error("load authorization snapshot", slog.Int64("user_id", user.ID), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err := accounts.EnsureAccess(user, snap.IsBypass()); err != nil {
			m.log().Info("request denied by account gate",
				slog.Int64("user_id", user.ID), slog.Any("reason", err))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		ctx = ContextWithUser(ctx, user)
		ctx = authz.ContextWithSnapshot(ctx, snap)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
