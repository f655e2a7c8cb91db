package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

var (
	ErrPointerNotFound = errors.New("active organization pointer not found")
)

const (
	pointerFindQuery = `
		SELECT user_id, organization_id, updated_at
		FROM active_organization_pointers
		WHERE user_id = $1`

	// Single-statement upsert keyed by user id. Concurrent switches by the
	// same user resolve to last write wins with no intermediate state.
	pointerUpsertQuery = `
		INSERT INTO active_organization_pointers (user_id, organization_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET organization_id = EXCLUDED.organization_id, updated_at = NOW()`
)

type PgPointerRepository struct{}

func NewPointerRepository() tenancy.PointerRepository {
	return &PgPointerRepository{}
}

func (g *PgPointerRepository) Get(ctx context.Context, userID uuid.UUID) (*tenancy.ActivePointer, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, pointerFindQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query active organization pointer")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrPointerNotFound
	}

	var dbPointer models.ActiveOrganizationPointer
	if err := rows.Scan(&dbPointer.UserID, &dbPointer.OrganizationID, &dbPointer.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to scan pointer row")
	}
	return ToDomainActivePointer(&dbPointer)
}

func (g *PgPointerRepository) Upsert(ctx context.Context, userID, organizationID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, pointerUpsertQuery, userID, organizationID); err != nil {
		return errors.Wrap(err, "failed to upsert active organization pointer")
	}
	return nil
}
