package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const verificationPrefix = "verify:"

// EmailVerifier hands out single-use email verification codes held in
// Redis under a TTL. The code is delivered out of band; confirming it
// consumes it atomically.
type EmailVerifier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmailVerifier constructs an EmailVerifier.
func NewEmailVerifier(client *redis.Client, ttl time.Duration) *EmailVerifier {
	return &EmailVerifier{client: client, ttl: ttl}
}

// Issue creates a fresh code for the user.
func (v *EmailVerifier) Issue(ctx context.Context, userID int64) (string, error) {
	code := uuid.NewString()
	if err := v.client.Set(ctx, verificationPrefix+code, userID, v.ttl).Err(); err != nil {
		return "", fmt.Errorf("accounts: store verification code: %w", err)
	}
	return code, nil
}

// Confirm consumes the code and returns the user it was issued for.
// Unknown and expired codes both map to ErrCodeInvalid.
func (v *EmailVerifier) Confirm(ctx context.Context, code string) (int64, error) {
	userID, err := v.client.GetDel(ctx, verificationPrefix+code).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCodeInvalid
		}
		return 0, fmt.Errorf("accounts: confirm verification code: %w", err)
	}
	return userID, nil
}
