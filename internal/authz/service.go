package authz

import "context"

// Service resolves authorization snapshots from the assignment graph.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Load computes the snapshot for the user via the two-step join:
// user → roles, roles → permissions. The permission set is the union
// over all assigned roles.
func (s *Service) Load(ctx context.Context, userID int64) (*Snapshot, error) {
	roles, err := s.repo.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	roleIDs := make([]int64, len(roles))
	for i, role := range roles {
		roleIDs[i] = role.ID
	}
	perms, err := s.repo.ListRolePermissions(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(userID, roles, perms), nil
}
