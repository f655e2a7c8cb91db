package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/membership"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipExists   = errors.New("membership already exists")
)

const (
	membershipFindQuery = `
		SELECT
			m.id,
			m.user_id,
			m.organization_id,
			m.role_id,
			m.is_primary,
			m.created_at
		FROM memberships m`

	membershipInsertQuery = `
		INSERT INTO memberships (id, user_id, organization_id, role_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	membershipDeleteQuery = `DELETE FROM memberships WHERE user_id = $1 AND organization_id = $2`

	membershipClearPrimaryQuery = `UPDATE memberships SET is_primary = false WHERE user_id = $1 AND is_primary = true`
	membershipSetPrimaryQuery   = `UPDATE memberships SET is_primary = true WHERE user_id = $1 AND organization_id = $2`
)

type PgMembershipRepository struct{}

func NewMembershipRepository() membership.Repository {
	return &PgMembershipRepository{}
}

func (g *PgMembershipRepository) queryMemberships(ctx context.Context, query string, args ...interface{}) ([]*membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query memberships")
	}
	defer rows.Close()

	var memberships []*membership.Membership
	for rows.Next() {
		var dbMembership models.Membership
		if err := rows.Scan(
			&dbMembership.ID,
			&dbMembership.UserID,
			&dbMembership.OrganizationID,
			&dbMembership.RoleID,
			&dbMembership.IsPrimary,
			&dbMembership.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan membership row")
		}
		entity, err := ToDomainMembership(&dbMembership)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map membership to domain")
		}
		memberships = append(memberships, entity)
	}
	return memberships, rows.Err()
}

func (g *PgMembershipRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*membership.Membership, error) {
	// created_at ASC is the deterministic tie-break relied on by
	// tenant-context resolution.
	return g.queryMemberships(ctx, membershipFindQuery+" WHERE m.user_id = $1 ORDER BY m.created_at ASC, m.id ASC", userID)
}

func (g *PgMembershipRepository) GetByUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (*membership.Membership, error) {
	memberships, err := g.queryMemberships(ctx, membershipFindQuery+" WHERE m.user_id = $1 AND m.organization_id = $2", userID, organizationID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, ErrMembershipNotFound
	}
	return memberships[0], nil
}

func (g *PgMembershipRepository) Create(ctx context.Context, entity *membership.Membership) (*membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbMembership := toDBMembership(entity)
	if _, err := tx.Exec(
		ctx,
		membershipInsertQuery,
		dbMembership.ID,
		dbMembership.UserID,
		dbMembership.OrganizationID,
		dbMembership.RoleID,
		dbMembership.IsPrimary,
		dbMembership.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrMembershipExists
		}
		return nil, errors.Wrap(err, "failed to insert membership")
	}
	return g.GetByUserAndOrg(ctx, entity.UserID(), entity.OrganizationID())
}

func (g *PgMembershipRepository) Delete(ctx context.Context, userID, organizationID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, membershipDeleteQuery, userID, organizationID)
	if err != nil {
		return errors.Wrap(err, "failed to delete membership")
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (g *PgMembershipRepository) SetPrimary(ctx context.Context, userID, organizationID uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return errors.Wrap(err, "failed to get transaction")
		}
		if _, err := tx.Exec(txCtx, membershipClearPrimaryQuery, userID); err != nil {
			return errors.Wrap(err, "failed to clear primary membership")
		}
		tag, err := tx.Exec(txCtx, membershipSetPrimaryQuery, userID, organizationID)
		if err != nil {
			return errors.Wrap(err, "failed to set primary membership")
		}
		if tag.RowsAffected() == 0 {
			return ErrMembershipNotFound
		}
		return nil
	})
}
