// Package auth exposes the HTTP authentication flows: login, refresh,
// logout, registration and email verification.
package auth

import (
	"context"

	"github.com/veridian-id/veridian/internal/accounts"
)

// TokenPair is the credential set handed to a client on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type userContextKey struct{}

// ContextWithUser stores the authenticated principal in the context.
func ContextWithUser(ctx context.Context, user *accounts.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated principal, nil when absent.
func UserFromContext(ctx context.Context) *accounts.User {
	user, _ := ctx.Value(userContextKey{}).(*accounts.User)
	return user
}
