package roles_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/roles"
	"github.com/veridian-id/veridian/internal/shared"
)

type memoryRolesRepo struct {
	roles      map[int64]authz.Role
	perms      map[int64]authz.Permission
	grants     map[int64]map[int64]bool // role -> permission set
	userRoles  map[int64]map[int64]bool // user -> role set
	nextRoleID int64
	nextPermID int64
}

func newMemoryRolesRepo() *memoryRolesRepo {
	return &memoryRolesRepo{
		roles:     make(map[int64]authz.Role),
		perms:     make(map[int64]authz.Permission),
		grants:    make(map[int64]map[int64]bool),
		userRoles: make(map[int64]map[int64]bool),
	}
}

func (r *memoryRolesRepo) seedPermission(code string) authz.Permission {
	r.nextPermID++
	perm := authz.Permission{ID: r.nextPermID, Code: code}
	r.perms[perm.ID] = perm
	return perm
}

func (r *memoryRolesRepo) ListRoles(ctx context.Context) ([]authz.Role, error) {
	var out []authz.Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRolesRepo) GetRole(ctx context.Context, id int64) (authz.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return authz.Role{}, roles.ErrNotFound
	}
	return role, nil
}

func (r *memoryRolesRepo) CreateRole(ctx context.Context, name, description string) (authz.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return authz.Role{}, roles.ErrDuplicateName
		}
	}
	r.nextRoleID++
	role := authz.Role{ID: r.nextRoleID, Name: name, Description: description}
	r.roles[role.ID] = role
	r.grants[role.ID] = make(map[int64]bool)
	return role, nil
}

func (r *memoryRolesRepo) UpdateRole(ctx context.Context, id int64, name, description string) (authz.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return authz.Role{}, roles.ErrNotFound
	}
	role.Name = name
	role.Description = description
	r.roles[id] = role
	return role, nil
}

func (r *memoryRolesRepo) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return roles.ErrNotFound
	}
	delete(r.roles, id)
	delete(r.grants, id)
	return nil
}

func (r *memoryRolesRepo) ListPermissions(ctx context.Context) ([]authz.Permission, error) {
	var out []authz.Permission
	for _, perm := range r.perms {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memoryRolesRepo) ListRolePermissions(ctx context.Context, roleID int64) ([]authz.Permission, error) {
	var out []authz.Permission
	for id := range r.grants[roleID] {
		out = append(out, r.perms[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memoryRolesRepo) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if r.grants[roleID] == nil {
		r.grants[roleID] = make(map[int64]bool)
	}
	r.grants[roleID][permissionID] = true
	return nil
}

func (r *memoryRolesRepo) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	delete(r.grants[roleID], permissionID)
	return nil
}

func (r *memoryRolesRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	if r.userRoles[userID] == nil {
		r.userRoles[userID] = make(map[int64]bool)
	}
	r.userRoles[userID][roleID] = true
	return nil
}

func (r *memoryRolesRepo) RemoveRole(ctx context.Context, userID, roleID int64) error {
	delete(r.userRoles[userID], roleID)
	return nil
}

func TestCreateRoleRejectsDuplicateName(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := roles.NewService(repo, nil)

	_, err := svc.CreateRole(context.Background(), "editor", "")
	require.NoError(t, err)

	_, err = svc.CreateRole(context.Background(), "editor", "again")
	require.ErrorIs(t, err, roles.ErrDuplicateName)
}

func TestCreateRoleRejectsBlankName(t *testing.T) {
	svc := roles.NewService(newMemoryRolesRepo(), nil)

	_, err := svc.CreateRole(context.Background(), "   ", "")
	require.Error(t, err)
}

func TestSetRolePermissionsDiffsGrants(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := roles.NewService(repo, nil)

	read := repo.seedPermission("user:read")
	list := repo.seedPermission("user:list")
	ban := repo.seedPermission("user:ban")

	role, err := svc.CreateRole(context.Background(), "moderator", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(context.Background(), 1, role.ID, []int64{read.ID, list.ID}))

	perms, err := repo.ListRolePermissions(context.Background(), role.ID)
	require.NoError(t, err)
	require.Len(t, perms, 2)

	// Replace list with ban; read survives untouched.
	require.NoError(t, svc.SetRolePermissions(context.Background(), 1, role.ID, []int64{read.ID, ban.ID}))

	perms, err = repo.ListRolePermissions(context.Background(), role.ID)
	require.NoError(t, err)
	codes := []string{perms[0].Code, perms[1].Code}
	require.ElementsMatch(t, []string{"user:read", "user:ban"}, codes)
}

func TestSetRolePermissionsUnknownRole(t *testing.T) {
	svc := roles.NewService(newMemoryRolesRepo(), nil)

	err := svc.SetRolePermissions(context.Background(), 1, 42, nil)
	require.ErrorIs(t, err, roles.ErrNotFound)
}

func TestAssignRoleIsIdempotent(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := roles.NewService(repo, nil)

	role, err := svc.CreateRole(context.Background(), "editor", "")
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(context.Background(), 1, 7, role.ID))
	require.NoError(t, svc.AssignRole(context.Background(), 1, 7, role.ID))
	require.True(t, repo.userRoles[7][role.ID])

	require.NoError(t, svc.RemoveRole(context.Background(), 1, 7, role.ID))
	require.False(t, repo.userRoles[7][role.ID])
}

func TestAssignUnknownRole(t *testing.T) {
	svc := roles.NewService(newMemoryRolesRepo(), nil)

	err := svc.AssignRole(context.Background(), 1, 7, 99)
	require.ErrorIs(t, err, roles.ErrNotFound)
}

type failingAudit struct{}

func (failingAudit) Record(ctx context.Context, entry shared.AuditEntry) error {
	return errors.New("audit store down")
}

func TestAssignRoleToleratesAuditFailure(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := roles.NewService(repo, failingAudit{})

	role, err := svc.CreateRole(context.Background(), "editor", "")
	require.NoError(t, err)

	// The assignment sticks even when the audit write fails.
	require.NoError(t, svc.AssignRole(context.Background(), 1, 7, role.ID))
	require.True(t, repo.userRoles[7][role.ID])
}
