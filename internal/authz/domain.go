// Package authz resolves a principal's effective roles and permissions
// from the assignment graph and answers capability queries.
package authz

import "time"

// RoleSuperadmin satisfies every role and permission check without
// consulting the permission graph.
const RoleSuperadmin = "superadmin"

// Role groups permissions under a unique name.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is an atomic capability, coded as "resource:action".
type Permission struct {
	ID          int64
	Code        string
	Description string
}
