package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/superadmin/domain/entities"
)

type ElevationAuditLogRepository interface {
	Append(ctx context.Context, entry *entities.ElevationAuditLog) error
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*entities.ElevationAuditLog, int, error)
}
