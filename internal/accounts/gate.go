package accounts

import "fmt"

// EnsureAccess decides whether the account may authenticate. Bypass
// principals pass regardless of status; everyone else needs an active
// account with a verified email. The returned error wraps
// ErrAccessDenied with a status-specific reason intended for logs, not
// for the caller-facing response.
func EnsureAccess(user *User, bypass bool) error {
	if bypass {
		return nil
	}
	switch user.Status {
	case StatusActive:
		if !user.EmailVerified {
			return fmt.Errorf("%w: please verify your email", ErrAccessDenied)
		}
		return nil
	case StatusPending:
		return fmt.Errorf("%w: account not activated yet", ErrAccessDenied)
	case StatusDeactivated:
		return fmt.Errorf("%w: account is deactivated", ErrAccessDenied)
	case StatusSuspended:
		return fmt.Errorf("%w: account is suspended", ErrAccessDenied)
	case StatusBanned:
		return fmt.Errorf("%w: account has been banned", ErrAccessDenied)
	default:
		return fmt.Errorf("%w: invalid account status %q", ErrAccessDenied, user.Status)
	}
}
