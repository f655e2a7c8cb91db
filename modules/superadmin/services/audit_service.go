package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openclerk/casedesk/modules/superadmin/domain"
	"github.com/openclerk/casedesk/modules/superadmin/domain/entities"
	"github.com/openclerk/casedesk/pkg/composables"
)

type AuditService struct {
	repo domain.ElevationAuditLogRepository
}

func NewAuditService(repo domain.ElevationAuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log appends one audit entry. Actor identity and request metadata are taken
// from the context when present; payload is marshalled as-is.
func (s *AuditService) Log(ctx context.Context, action string, targetID *uuid.UUID, payload any) error {
	entry := &entities.ElevationAuditLog{
		Action:   action,
		TargetID: targetID,
	}

	if identity, ok := composables.UseIdentity(ctx); ok {
		actorID := identity.UserID
		entry.ActorID = &actorID
		entry.ActorEmail = identity.Email
	}

	if params, ok := composables.UseParams(ctx); ok {
		if params.IP != "" {
			entry.IPAddress = &params.IP
		}
		if params.UserAgent != "" {
			entry.UserAgent = &params.UserAgent
		}
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to marshal audit payload")
		}
		entry.Payload = payloadBytes
	}

	return s.repo.Append(ctx, entry)
}

func (s *AuditService) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*entities.ElevationAuditLog, int, error) {
	return s.repo.ListByActor(ctx, actorID, limit, offset)
}
