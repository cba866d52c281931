package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/shared"
)

// Service coordinates role catalogue changes and assignment edges.
type Service struct {
	repo  Repository
	audit shared.AuditRecorder
}

// NewService builds a Service instance. audit may be nil.
func NewService(repo Repository, audit shared.AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListRoles returns the role catalogue.
func (s *Service) ListRoles(ctx context.Context) ([]authz.Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns one role with its granted permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (authz.Role, []authz.Permission, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return authz.Role{}, nil, err
	}
	perms, err := s.repo.ListRolePermissions(ctx, id)
	if err != nil {
		return authz.Role{}, nil, err
	}
	return role, perms, nil
}

// CreateRole adds a role to the catalogue.
func (s *Service) CreateRole(ctx context.Context, name, description string) (authz.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return authz.Role{}, shared.ErrValidation
	}
	return s.repo.CreateRole(ctx, name, description)
}

// UpdateRole renames or redescribes a role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (authz.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return authz.Role{}, shared.ErrValidation
	}
	return s.repo.UpdateRole(ctx, id, name, description)
}

// DeleteRole removes a role and all of its assignment edges.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// ListPermissions returns the full permission catalogue.
func (s *Service) ListPermissions(ctx context.Context) ([]authz.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// SetRolePermissions replaces a role's grants with the given permission
// IDs. Existing grants not in the list are detached; new ones attached.
func (s *Service) SetRolePermissions(ctx context.Context, actorID, roleID int64, permissionIDs []int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	current, err := s.repo.ListRolePermissions(ctx, roleID)
	if err != nil {
		return err
	}

	have := make(map[int64]bool, len(current))
	for _, perm := range current {
		have[perm.ID] = true
	}
	want := make(map[int64]bool, len(permissionIDs))
	for _, id := range permissionIDs {
		want[id] = true
	}

	for id := range want {
		if !have[id] {
			if err := s.repo.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range have {
		if !want[id] {
			if err := s.repo.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}

	s.recordAudit(ctx, shared.AuditEntry{
		ActorID: actorID,
		Action:  shared.AuditGrantsReplaced,
		Subject: fmt.Sprintf("role:%d", roleID),
		Meta:    map[string]any{"permission_ids": permissionIDs},
	})
	return nil
}

// AssignRole grants a role to a user. Assigning an already held role is
// a no-op.
func (s *Service) AssignRole(ctx context.Context, actorID, userID, roleID int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{
		ActorID: actorID,
		Action:  shared.AuditRoleAssigned,
		Subject: fmt.Sprintf("user:%d", userID),
		Meta:    map[string]any{"role_id": roleID},
	})
	return nil
}

// RemoveRole revokes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, actorID, userID, roleID int64) error {
	if err := s.repo.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditEntry{
		ActorID: actorID,
		Action:  shared.AuditRoleRemoved,
		Subject: fmt.Sprintf("user:%d", userID),
		Meta:    map[string]any{"role_id": roleID},
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
