package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit actions recorded by the identity flows.
const (
	AuditLoginSucceeded = "auth.login.succeeded"
	AuditLoginDenied    = "auth.login.denied"
	AuditLogout         = "auth.logout"
	AuditRegistered     = "auth.registered"
	AuditEmailVerified  = "auth.email_verified"
	AuditStatusChanged  = "account.status_changed"
	AuditAccountDeleted = "account.deleted"
	AuditRoleAssigned   = "role.assigned"
	AuditRoleRemoved    = "role.removed"
	AuditGrantsReplaced = "role.grants_replaced"
)

// AuditEntry is one record in the audit trail. ActorID is zero for
// unauthenticated events such as failed logins.
type AuditEntry struct {
	ActorID int64
	Action  string
	Subject string
	Meta    map[string]any
	At      time.Time
}

// AuditRecorder persists audit trail entries. *AuditLogger is the
// production implementation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditLogger writes the identity audit trail into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the entry. A nil logger is a no-op so callers can
// run without an audit sink in tests.
func (l *AuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	if l == nil {
		return nil
	}
	if entry.Action == "" {
		return errors.New("audit entry requires an action")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, subject, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5)`,
		entry.ActorID, entry.Action, entry.Subject, metaJSON, at)
	return err
}
