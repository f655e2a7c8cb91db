package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/metrics"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
)

// AdminIdentity is the result of a successful super-admin check. It carries
// no organization context; super-admin operations are organization
// independent.
type AdminIdentity struct {
	UserID    uuid.UUID
	Email     string
	GrantedAt *time.Time
}

// AccessGuard is the single entry point protected operations call before
// performing their effect. It composes the tenancy resolver and the
// permission engine, performs no caching, and re-resolves the tenant context
// on every call so permission and role changes take effect on the next
// request at the latest.
type AccessGuard struct {
	tenancy *TenancyService
	users   user.Repository
}

func NewAccessGuard(tenancy *TenancyService, users user.Repository) *AccessGuard {
	return &AccessGuard{
		tenancy: tenancy,
		users:   users,
	}
}

// RequirePermission resolves a fresh tenant context for userID and checks the
// capability. Super admins pass regardless of membership state; a super admin
// with zero memberships receives an organization-less context instead of
// NoOrganization.
func (g *AccessGuard) RequirePermission(ctx context.Context, userID uuid.UUID, code permission.Code) (*tenancy.Context, error) {
	start := time.Now()
	tctx, err := g.requirePermission(ctx, userID, code)
	metrics.RecordGuardDecision("permission", err == nil, time.Since(start))
	return tctx, err
}

func (g *AccessGuard) requirePermission(ctx context.Context, userID uuid.UUID, code permission.Code) (*tenancy.Context, error) {
	tctx, err := g.tenancy.Resolve(ctx, userID)
	if errors.Is(err, ErrNoOrganization) {
		// A super admin may legitimately hold zero memberships; global
		// operations still have to pass.
		u, uErr := g.users.GetByID(ctx, userID)
		if uErr != nil || !u.IsSuperAdmin() {
			return nil, err
		}
		tctx = tenancy.NewSuperAdminContext(userID)
	} else if err != nil {
		return nil, err
	}

	if !tctx.HasPermission(code) {
		composables.UseLogger(ctx).
			WithField("user_id", userID).
			WithField("permission", code.String()).
			Debug("permission denied")
		return nil, ErrAccessDenied
	}
	return tctx, nil
}

// RequireSuperAdmin checks the durable global flag only. It never consults
// memberships or organizations; a super admin with zero memberships passes.
func (g *AccessGuard) RequireSuperAdmin(ctx context.Context, userID uuid.UUID) (*AdminIdentity, error) {
	start := time.Now()
	identity, err := g.requireSuperAdmin(ctx, userID)
	metrics.RecordGuardDecision("super_admin", err == nil, time.Since(start))
	return identity, err
}

func (g *AccessGuard) requireSuperAdmin(ctx context.Context, userID uuid.UUID) (*AdminIdentity, error) {
	u, err := g.users.GetByID(ctx, userID)
	if errors.Is(err, persistence.ErrUserNotFound) {
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, errors.Wrap(ErrInternalResolution, err.Error())
	}
	if !u.IsSuperAdmin() {
		return nil, ErrAccessDenied
	}
	return &AdminIdentity{
		UserID:    u.ID(),
		Email:     u.Email().Value(),
		GrantedAt: u.SuperAdminGrantedAt(),
	}, nil
}
