package tenancy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivePointer is the single durable row per user recording which
// organization is currently selected. Absent until first resolution, at
// which point it defaults to the primary membership.
type ActivePointer struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	UpdatedAt      time.Time
}

type PointerRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*ActivePointer, error)
	// Upsert atomically writes the pointer in a single statement keyed by
	// user id. Concurrent switches from the same user resolve to last
	// write wins with no partial state.
	Upsert(ctx context.Context, userID, organizationID uuid.UUID) error
}
