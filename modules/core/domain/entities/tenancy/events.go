package tenancy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrganizationSwitchedEvent struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	SwitchedAt     time.Time
}

func NewOrganizationSwitchedEvent(_ context.Context, userID, organizationID uuid.UUID) *OrganizationSwitchedEvent {
	return &OrganizationSwitchedEvent{
		UserID:         userID,
		OrganizationID: organizationID,
		SwitchedAt:     time.Now(),
	}
}
