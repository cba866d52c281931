package authz

import (
	"log/slog"
	"net/http"
)

// Middleware guards HTTP handlers with permission and role checks
// against the snapshot placed in the request context by the
// authentication layer.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePermission admits the request when the snapshot holds at least
// one of the given permission codes.
func (m Middleware) RequirePermission(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			if snap == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			for _, code := range codes {
				if snap.HasPermission(code) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("permission denied",
					slog.Int64("user_id", snap.UserID()),
					slog.Any("required", codes))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireRole admits the request when the snapshot holds the role.
func (m Middleware) RequireRole(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			if snap == nil || !snap.HasRole(name) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
