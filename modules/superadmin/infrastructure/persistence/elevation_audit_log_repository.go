package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openclerk/casedesk/modules/superadmin/domain"
	"github.com/openclerk/casedesk/modules/superadmin/domain/entities"
	"github.com/openclerk/casedesk/pkg/composables"
)

type pgElevationAuditLogRepository struct{}

func NewPgElevationAuditLogRepository() domain.ElevationAuditLogRepository {
	return &pgElevationAuditLogRepository{}
}

func (r *pgElevationAuditLogRepository) Append(ctx context.Context, entry *entities.ElevationAuditLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO elevation_audit_logs (
			actor_user_id,
			actor_email_snapshot,
			action,
			target_user_id,
			payload,
			ip_address,
			user_agent,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`,
		entry.ActorID,
		entry.ActorEmail,
		entry.Action,
		entry.TargetID,
		entry.Payload,
		entry.IPAddress,
		entry.UserAgent,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert audit log")
	}
	return nil
}

func (r *pgElevationAuditLogRepository) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*entities.ElevationAuditLog, int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get transaction")
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM elevation_audit_logs WHERE actor_user_id = $1`, actorID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count audit logs")
	}

	rows, err := tx.Query(ctx, `
		SELECT
			id,
			actor_user_id,
			actor_email_snapshot,
			action,
			target_user_id,
			payload,
			ip_address::text,
			user_agent,
			created_at
		FROM elevation_audit_logs
		WHERE actor_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, actorID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query audit logs")
	}
	defer rows.Close()

	var out []*entities.ElevationAuditLog
	for rows.Next() {
		var a entities.ElevationAuditLog
		if err := rows.Scan(
			&a.ID,
			&a.ActorID,
			&a.ActorEmail,
			&a.Action,
			&a.TargetID,
			&a.Payload,
			&a.IPAddress,
			&a.UserAgent,
			&a.CreatedAt,
		); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan audit log")
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "error iterating audit logs")
	}
	return out, total, nil
}
