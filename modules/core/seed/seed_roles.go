package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/modules/core/permissions"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/configuration"
)

var (
	caseWorkerRoleID = uuid.MustParse("e4c5d9b1-31a4-4dd1-9d52-47a1f1bd1b01")
	firmAdminRoleID  = uuid.MustParse("e4c5d9b1-31a4-4dd1-9d52-47a1f1bd1b02")
	supervisorRoleID = uuid.MustParse("e4c5d9b1-31a4-4dd1-9d52-47a1f1bd1b03")
)

// CreateDefaultRoles provisions the built-in roles once. Existing roles are
// left untouched so administrative edits survive restarts.
func CreateDefaultRoles(ctx context.Context, repo role.Repository) error {
	logger := configuration.Use().Logger()

	defaults := []role.Role{
		role.New(
			"Case Worker",
			role.WithID(caseWorkerRoleID),
			role.WithPermissions([]*permission.Permission{
				permissions.CasesReadPermission,
				permissions.CasesManagePermission,
			}),
		),
		role.New(
			"Firm Administrator",
			role.WithID(firmAdminRoleID),
			role.WithPermissions(permissions.Permissions),
		),
		// Deliberate "regional supervisor" shape: grants in a parent
		// organization apply to every descendant office.
		role.New(
			"Regional Supervisor",
			role.WithID(supervisorRoleID),
			role.WithInheritsToDescendants(true),
			role.WithPermissions([]*permission.Permission{
				permissions.CasesReadPermission,
				permissions.ReportsViewPermission,
			}),
		),
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		for _, r := range defaults {
			_, err := repo.GetByID(txCtx, r.ID())
			if err == nil {
				continue
			}
			if !errors.Is(err, persistence.ErrRoleNotFound) {
				return errors.Wrapf(err, "failed to check role %s", r.Name())
			}
			if _, err := repo.Create(txCtx, r); err != nil {
				return errors.Wrapf(err, "failed to seed role %s", r.Name())
			}
			logger.Infof("Seeded role %q", r.Name())
		}
		return nil
	})
}
