package composables

import (
	"context"

	"github.com/google/uuid"

	"github.com/openclerk/casedesk/pkg/constants"
)

// Identity is the verified {userId, email} pair supplied by the upstream
// authentication collaborator on every request. The core never verifies
// credentials itself.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityKey, identity)
}

func UseIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(constants.IdentityKey).(Identity)
	return identity, ok
}
