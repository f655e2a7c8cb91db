package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/entities/membership"
	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
)

// PermissionEngine computes the effective permission set for a tenant
// context. All load failures propagate as errors so callers fail closed;
// there is no defaulting to "allow" anywhere in this file.
type PermissionEngine struct {
	memberships   membership.Repository
	roles         role.Repository
	organizations organization.Repository
}

func NewPermissionEngine(
	memberships membership.Repository,
	roles role.Repository,
	organizations organization.Repository,
) *PermissionEngine {
	return &PermissionEngine{
		memberships:   memberships,
		roles:         roles,
		organizations: organizations,
	}
}

// ComputeEffective returns the union of the active role's direct permissions
// and the permissions of every ancestor-organization membership whose role is
// flagged InheritsToDescendants. A membership in a parent organization grants
// nothing in descendants unless that flag is set; deep hierarchies must not
// escalate silently.
func (e *PermissionEngine) ComputeEffective(ctx context.Context, userID, organizationID uuid.UUID, activeRole role.Role) ([]permission.Code, error) {
	seen := make(map[permission.Code]struct{})
	codes := make([]permission.Code, 0, len(activeRole.Permissions()))
	add := func(perms []*permission.Permission) {
		for _, p := range perms {
			if _, ok := seen[p.Code]; ok {
				continue
			}
			seen[p.Code] = struct{}{}
			codes = append(codes, p.Code)
		}
	}

	add(activeRole.Permissions())

	ancestors, err := e.organizations.Ancestors(ctx, organizationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load organization ancestors")
	}

	for _, ancestor := range ancestors {
		m, err := e.memberships.GetByUserAndOrg(ctx, userID, ancestor.ID())
		if errors.Is(err, persistence.ErrMembershipNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load ancestor membership")
		}
		ancestorRole, err := e.roles.GetByID(ctx, m.RoleID())
		if err != nil {
			return nil, errors.Wrap(err, "failed to load ancestor membership role")
		}
		if !ancestorRole.InheritsToDescendants() {
			continue
		}
		add(ancestorRole.Permissions())
	}

	return codes, nil
}
