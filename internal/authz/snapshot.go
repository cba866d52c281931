package authz

import "context"

// Snapshot is the resolved role and permission set of one principal at
// one point in time. It is computed once per load and passed along for
// the duration of a single request; assignments can change between
// loads, so a snapshot must never be cached across requests.
type Snapshot struct {
	userID int64
	bypass bool
	roles  map[string]struct{}
	perms  map[string]struct{}
}

// NewSnapshot resolves the snapshot from the loaded assignment data.
func NewSnapshot(userID int64, roles []Role, perms []Permission) *Snapshot {
	s := &Snapshot{
		userID: userID,
		roles:  make(map[string]struct{}, len(roles)),
		perms:  make(map[string]struct{}, len(perms)),
	}
	for _, role := range roles {
		s.roles[role.Name] = struct{}{}
		if role.Name == RoleSuperadmin {
			s.bypass = true
		}
	}
	for _, perm := range perms {
		s.perms[perm.Code] = struct{}{}
	}
	return s
}

// UserID returns the principal the snapshot was resolved for.
func (s *Snapshot) UserID() int64 {
	return s.userID
}

// IsBypass reports whether the principal holds the superadmin role.
func (s *Snapshot) IsBypass() bool {
	return s.bypass
}

// HasRole reports whether the role is assigned. Bypass principals hold
// every role.
func (s *Snapshot) HasRole(name string) bool {
	if s.bypass {
		return true
	}
	_, ok := s.roles[name]
	return ok
}

// HasPermission reports whether the permission is in the union of the
// assigned roles' grants. Bypass principals hold every permission.
func (s *Snapshot) HasPermission(code string) bool {
	if s.bypass {
		return true
	}
	_, ok := s.perms[code]
	return ok
}

type snapshotContextKey struct{}

// ContextWithSnapshot stores the snapshot in the request context.
func ContextWithSnapshot(ctx context.Context, s *Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, s)
}

// SnapshotFromContext extracts the snapshot, nil when absent.
func SnapshotFromContext(ctx context.Context) *Snapshot {
	s, _ := ctx.Value(snapshotContextKey{}).(*Snapshot)
	return s
}
