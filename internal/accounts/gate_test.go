package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridian-id/veridian/internal/accounts"
)

func TestGateAllowsActiveVerified(t *testing.T) {
	user := &accounts.User{Status: accounts.StatusActive, EmailVerified: true}
	require.NoError(t, accounts.EnsureAccess(user, false))
}

func TestGateDeniesUnverifiedEmail(t *testing.T) {
	user := &accounts.User{Status: accounts.StatusActive, EmailVerified: false}
	err := accounts.EnsureAccess(user, false)
	require.ErrorIs(t, err, accounts.ErrAccessDenied)
	require.Contains(t, err.Error(), "verify your email")
}

func TestGateDeniesPerStatus(t *testing.T) {
	cases := []struct {
		status accounts.Status
		reason string
	}{
		{accounts.StatusPending, "not activated yet"},
		{accounts.StatusDeactivated, "deactivated"},
		{accounts.StatusSuspended, "suspended"},
		{accounts.StatusBanned, "banned"},
		{accounts.Status("bogus"), "invalid account status"},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			user := &accounts.User{Status: tc.status, EmailVerified: true}
			err := accounts.EnsureAccess(user, false)
			require.ErrorIs(t, err, accounts.ErrAccessDenied)
			require.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestGateBypassIgnoresStatus(t *testing.T) {
	for _, status := range []accounts.Status{
		accounts.StatusPending,
		accounts.StatusDeactivated,
		accounts.StatusSuspended,
		accounts.StatusBanned,
	} {
		user := &accounts.User{Status: status, EmailVerified: false}
		require.NoError(t, accounts.EnsureAccess(user, true))
	}
}
