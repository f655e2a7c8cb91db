package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/permissions"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/configuration"
)

// SyncPermissionCatalog upserts the static permission catalog. Safe to run on
// every startup.
func SyncPermissionCatalog(ctx context.Context, repo permission.Repository) error {
	logger := configuration.Use().Logger()

	return composables.InTx(ctx, func(txCtx context.Context) error {
		for _, p := range permissions.Permissions {
			if err := repo.Save(txCtx, p); err != nil {
				return errors.Wrapf(err, "failed to seed permission %s", p.Code)
			}
		}
		logger.Infof("Permission catalog synced (%d permissions)", len(permissions.Permissions))
		return nil
	})
}
