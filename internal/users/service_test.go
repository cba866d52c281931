package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/shared"
	"github.com/veridian-id/veridian/internal/users"
)

type failingAudit struct{}

func (failingAudit) Record(ctx context.Context, entry shared.AuditEntry) error {
	return errors.New("audit store down")
}

func TestSuspendToleratesAuditFailure(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := users.NewService(repo, failingAudit{})
	user, err := repo.Create(context.Background(), "a@example.com", "x")
	require.NoError(t, err)

	// The status change lands even when the audit write fails.
	require.NoError(t, svc.Suspend(context.Background(), 99, user.ID))

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, accounts.StatusSuspended, stored.Status)
}

func TestDeleteToleratesAuditFailure(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := users.NewService(repo, failingAudit{})
	user, err := repo.Create(context.Background(), "a@example.com", "x")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 99, user.ID))

	_, err = repo.FindByID(context.Background(), user.ID)
	require.ErrorIs(t, err, accounts.ErrNotFound)
}
