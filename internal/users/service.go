// Package users exposes the account administration endpoints: listing,
// inspection and status transitions over principals.
package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/shared"
)

// Service handles administrative operations over accounts.
type Service struct {
	repo  accounts.Repository
	audit shared.AuditRecorder
}

// NewService builds a Service instance. audit may be nil.
func NewService(repo accounts.Repository, audit shared.AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns a page of accounts with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]accounts.User, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	users, total, err := s.repo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, perPage, total), nil
}

// Get fetches an account.
func (s *Service) Get(ctx context.Context, id int64) (*accounts.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Suspend temporarily restricts the account.
func (s *Service) Suspend(ctx context.Context, actorID, id int64) error {
	return s.setStatus(ctx, actorID, id, accounts.StatusSuspended)
}

// Ban permanently blocks the account.
func (s *Service) Ban(ctx context.Context, actorID, id int64) error {
	return s.setStatus(ctx, actorID, id, accounts.StatusBanned)
}

// Activate restores the account to active status.
func (s *Service) Activate(ctx context.Context, actorID, id int64) error {
	return s.setStatus(ctx, actorID, id, accounts.StatusActive)
}

// Delete removes the account permanently.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{
		ActorID: actorID,
		Action:  shared.AuditAccountDeleted,
		Subject: fmt.Sprintf("user:%d", id),
	})
	return nil
}

func (s *Service) setStatus(ctx context.Context, actorID, id int64, status accounts.Status) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{
		ActorID: actorID,
		Action:  shared.AuditStatusChanged,
		Subject: fmt.Sprintf("user:%d", id),
		Meta:    map[string]any{"status": string(status)},
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, entry shared.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Default().Warn("record audit entry", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
