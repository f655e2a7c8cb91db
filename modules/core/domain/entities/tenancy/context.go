package tenancy

import (
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
)

// Context is the per-request derived tenant context: which organization and
// role apply to the current identity, and the effective permission set after
// role grants and hierarchy inheritance. It is constructed fresh on every
// request and must never be cached across requests — memberships and
// role-permission mappings can change between requests.
type Context struct {
	userID         uuid.UUID
	organizationID uuid.UUID
	role           role.Role
	permissions    map[permission.Code]struct{}
	superAdmin     bool
}

func NewContext(userID, organizationID uuid.UUID, r role.Role, codes []permission.Code, superAdmin bool) *Context {
	set := make(map[permission.Code]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return &Context{
		userID:         userID,
		organizationID: organizationID,
		role:           r,
		permissions:    set,
		superAdmin:     superAdmin,
	}
}

// NewSuperAdminContext builds an organization-less context for super admins
// with zero memberships. Organization-scoped fields are zero values.
func NewSuperAdminContext(userID uuid.UUID) *Context {
	return &Context{
		userID:     userID,
		superAdmin: true,
	}
}

func (c *Context) UserID() uuid.UUID {
	return c.userID
}

func (c *Context) OrganizationID() uuid.UUID {
	return c.organizationID
}

func (c *Context) Role() role.Role {
	return c.role
}

func (c *Context) IsSuperAdmin() bool {
	return c.superAdmin
}

// HasPermission reports whether the context grants the capability. The
// super-admin branch below is the single authorization short-circuit in the
// codebase; every other decision is an enumerable set-membership check.
func (c *Context) HasPermission(code permission.Code) bool {
	if c.superAdmin {
		return true
	}
	_, ok := c.permissions[code]
	return ok
}

// EffectivePermissions returns the resolved capability codes. The returned
// slice is a copy; the internal set stays immutable after construction.
func (c *Context) EffectivePermissions() []permission.Code {
	out := make([]permission.Code, 0, len(c.permissions))
	for code := range c.permissions {
		out = append(out, code)
	}
	return out
}
