package composables

import (
	"context"

	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/pkg/constants"
)

// WithTenantContext attaches the freshly resolved tenant context for the
// remainder of the current request. It must be set by the access guard after
// resolution and never carried across requests.
func WithTenantContext(ctx context.Context, tctx *tenancy.Context) context.Context {
	return context.WithValue(ctx, constants.TenantContextKey, tctx)
}

func UseTenantContext(ctx context.Context) (*tenancy.Context, bool) {
	tctx, ok := ctx.Value(constants.TenantContextKey).(*tenancy.Context)
	return tctx, ok
}
