package services

import "github.com/openclerk/casedesk/pkg/serrors"

// Authorization error taxonomy. AccessDenied, OrganizationInactive and
// NotFound are expected outcomes handled by callers and never logged as
// incidents; InternalResolution is logged with full context and surfaced as a
// generic failure.
var (
	ErrNotAuthenticated = serrors.NewError(
		"AUTH_NOT_AUTHENTICATED",
		"request carries no verified identity",
		"Errors.NotAuthenticated",
	)
	ErrNoOrganization = serrors.NewError(
		"TENANCY_NO_ORGANIZATION",
		"user has no organization memberships",
		"Errors.NoOrganization",
	)
	ErrAccessDenied = serrors.NewError(
		"AUTHZ_ACCESS_DENIED",
		"access denied",
		"Errors.AccessDenied",
	)
	ErrOrganizationInactive = serrors.NewError(
		"TENANCY_ORGANIZATION_INACTIVE",
		"organization is inactive",
		"Errors.OrganizationInactive",
	)
	ErrTenancyNotFound = serrors.NewError(
		"TENANCY_NOT_FOUND",
		"referenced organization or role does not exist",
		"Errors.TenancyNotFound",
	)
	ErrInternalResolution = serrors.NewError(
		"TENANCY_INTERNAL_RESOLUTION",
		"tenant context resolution failed",
		"Errors.InternalResolution",
	)
)
