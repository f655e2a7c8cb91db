package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/entities/membership"
	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/eventbus"
)

// TenancyService resolves the per-request tenant context and handles active
// organization switches. Resolution is performed fresh on every call; nothing
// here caches a context across requests.
type TenancyService struct {
	users         user.Repository
	memberships   membership.Repository
	organizations organization.Repository
	pointers      tenancy.PointerRepository
	engine        *PermissionEngine
	publisher     eventbus.EventBus
}

func NewTenancyService(
	users user.Repository,
	memberships membership.Repository,
	organizations organization.Repository,
	pointers tenancy.PointerRepository,
	engine *PermissionEngine,
	publisher eventbus.EventBus,
) *TenancyService {
	return &TenancyService{
		users:         users,
		memberships:   memberships,
		organizations: organizations,
		pointers:      pointers,
		engine:        engine,
		publisher:     publisher,
	}
}

// Resolve determines the active organization for userID and builds the
// derived tenant context. Precedence: explicit pointer, then the primary
// membership, then the earliest-created membership. Memberships whose
// organization is missing or inactive are skipped; when the winner differs
// from the stored pointer the pointer is repaired best-effort.
func (s *TenancyService) Resolve(ctx context.Context, userID uuid.UUID) (*tenancy.Context, error) {
	memberships, err := s.memberships.GetByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(ErrInternalResolution, err.Error())
	}
	if len(memberships) == 0 {
		return nil, ErrNoOrganization
	}

	active, pointerStale, err := s.pickActiveMembership(ctx, userID, memberships)
	if err != nil {
		return nil, err
	}

	activeRole, err := s.roleFor(ctx, active)
	if err != nil {
		return nil, err
	}

	codes, err := s.engine.ComputeEffective(ctx, userID, active.OrganizationID(), activeRole)
	if err != nil {
		return nil, errors.Wrap(ErrInternalResolution, err.Error())
	}

	superAdmin := false
	if u, err := s.users.GetByID(ctx, userID); err == nil {
		superAdmin = u.IsSuperAdmin()
	} else if !errors.Is(err, persistence.ErrUserNotFound) {
		return nil, errors.Wrap(ErrInternalResolution, err.Error())
	}

	if pointerStale {
		// Best effort self-heal. The upsert is idempotent and a failure
		// (read-only replica, transient outage) must not fail resolution.
		if err := s.pointers.Upsert(ctx, userID, active.OrganizationID()); err != nil {
			composables.UseLogger(ctx).
				WithError(err).
				WithField("user_id", userID).
				Warn("failed to repair active organization pointer")
		}
	}

	return tenancy.NewContext(userID, active.OrganizationID(), activeRole, codes, superAdmin), nil
}

// pickActiveMembership applies the precedence chain, skipping memberships
// whose organization is inactive or missing. The second return value reports
// whether the stored pointer disagrees with the winner and needs repair.
func (s *TenancyService) pickActiveMembership(ctx context.Context, userID uuid.UUID, memberships []*membership.Membership) (*membership.Membership, bool, error) {
	var pointerOrgID *uuid.UUID
	pointer, err := s.pointers.Get(ctx, userID)
	switch {
	case err == nil:
		orgID := pointer.OrganizationID
		pointerOrgID = &orgID
	case errors.Is(err, persistence.ErrPointerNotFound):
	default:
		return nil, false, errors.Wrap(ErrInternalResolution, err.Error())
	}

	// memberships arrive ordered created_at ascending, so the earliest-created
	// tie-break is simply the first usable entry.
	ordered := make([]*membership.Membership, 0, len(memberships))
	if pointerOrgID != nil {
		for _, m := range memberships {
			if m.OrganizationID() == *pointerOrgID {
				ordered = append(ordered, m)
				break
			}
		}
	}
	for _, m := range memberships {
		if m.IsPrimary() && !containsMembership(ordered, m) {
			ordered = append(ordered, m)
		}
	}
	for _, m := range memberships {
		if !containsMembership(ordered, m) {
			ordered = append(ordered, m)
		}
	}

	for i, m := range ordered {
		org, err := s.organizations.GetByID(ctx, m.OrganizationID())
		if errors.Is(err, persistence.ErrOrganizationNotFound) {
			continue
		}
		if err != nil {
			return nil, false, errors.Wrap(ErrInternalResolution, err.Error())
		}
		if !org.IsActive() {
			continue
		}
		stale := i > 0 || pointerOrgID == nil || *pointerOrgID != m.OrganizationID()
		return m, stale, nil
	}

	// Every membership points at an inactive or missing organization.
	return nil, false, ErrOrganizationInactive
}

// roleFor loads the membership's role. A missing role is a referential
// integrity violation; the check fails closed rather than defaulting to an
// empty permission set being treated as a success elsewhere.
func (s *TenancyService) roleFor(ctx context.Context, m *membership.Membership) (role.Role, error) {
	r, err := s.engine.roles.GetByID(ctx, m.RoleID())
	if err != nil {
		return nil, errors.Wrap(ErrInternalResolution, err.Error())
	}
	return r, nil
}

func containsMembership(list []*membership.Membership, m *membership.Membership) bool {
	for _, candidate := range list {
		if candidate.ID() == m.ID() {
			return true
		}
	}
	return false
}

// SwitchActiveOrganization validates and persists a change of active
// organization. Membership is checked before organization state so a
// non-member probing an arbitrary id always sees AccessDenied and learns
// nothing about whether the organization exists.
func (s *TenancyService) SwitchActiveOrganization(ctx context.Context, userID, targetOrganizationID uuid.UUID) (uuid.UUID, error) {
	_, err := s.memberships.GetByUserAndOrg(ctx, userID, targetOrganizationID)
	if errors.Is(err, persistence.ErrMembershipNotFound) {
		return uuid.Nil, ErrAccessDenied
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrInternalResolution, err.Error())
	}

	org, err := s.organizations.GetByID(ctx, targetOrganizationID)
	if errors.Is(err, persistence.ErrOrganizationNotFound) {
		return uuid.Nil, ErrTenancyNotFound
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrInternalResolution, err.Error())
	}
	if !org.IsActive() {
		return uuid.Nil, ErrOrganizationInactive
	}

	// Single-statement upsert keyed by user id; concurrent switches from two
	// tabs end as last write wins with no partial state.
	if err := s.pointers.Upsert(ctx, userID, targetOrganizationID); err != nil {
		return uuid.Nil, errors.Wrap(ErrInternalResolution, err.Error())
	}

	s.publisher.Publish(tenancy.NewOrganizationSwitchedEvent(ctx, userID, targetOrganizationID))
	return targetOrganizationID, nil
}
