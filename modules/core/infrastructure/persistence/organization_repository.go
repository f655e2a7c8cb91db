package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationExists   = errors.New("organization with this code already exists")
)

const (
	organizationFindQuery = `
		SELECT
			o.id,
			o.name,
			o.code,
			o.org_type,
			o.parent_id,
			o.is_active,
			o.created_at,
			o.updated_at
		FROM organizations o`

	// Walks the parent chain upward. Depth ordering keeps the result
	// nearest-first, which is what permission inheritance expects.
	organizationAncestorsQuery = `
		WITH RECURSIVE ancestors AS (
			SELECT o.id, o.name, o.code, o.org_type, o.parent_id, o.is_active, o.created_at, o.updated_at, 1 AS depth
			FROM organizations o
			WHERE o.id = (SELECT parent_id FROM organizations WHERE id = $1)
			UNION ALL
			SELECT o.id, o.name, o.code, o.org_type, o.parent_id, o.is_active, o.created_at, o.updated_at, a.depth + 1
			FROM organizations o
			JOIN ancestors a ON o.id = a.parent_id
		)
		SELECT id, name, code, org_type, parent_id, is_active, created_at, updated_at
		FROM ancestors
		ORDER BY depth`

	organizationInsertQuery = `
		INSERT INTO organizations (id, name, code, org_type, parent_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	organizationUpdateQuery = `
		UPDATE organizations
		SET name = $2, code = $3, org_type = $4, parent_id = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
)

type PgOrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{}
}

func (g *PgOrganizationRepository) queryOrganizations(ctx context.Context, query string, args ...interface{}) ([]*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query organizations")
	}
	defer rows.Close()

	var organizations []*organization.Organization
	for rows.Next() {
		var dbOrg models.Organization
		if err := rows.Scan(
			&dbOrg.ID,
			&dbOrg.Name,
			&dbOrg.Code,
			&dbOrg.OrgType,
			&dbOrg.ParentID,
			&dbOrg.IsActive,
			&dbOrg.CreatedAt,
			&dbOrg.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan organization row")
		}
		entity, err := ToDomainOrganization(&dbOrg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map organization to domain")
		}
		organizations = append(organizations, entity)
	}
	return organizations, rows.Err()
}

func (g *PgOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	organizations, err := g.queryOrganizations(ctx, organizationFindQuery+" WHERE o.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(organizations) == 0 {
		return nil, ErrOrganizationNotFound
	}
	return organizations[0], nil
}

func (g *PgOrganizationRepository) GetByCode(ctx context.Context, code string) (*organization.Organization, error) {
	organizations, err := g.queryOrganizations(ctx, organizationFindQuery+" WHERE o.code = $1", organization.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if len(organizations) == 0 {
		return nil, ErrOrganizationNotFound
	}
	return organizations[0], nil
}

func (g *PgOrganizationRepository) List(ctx context.Context) ([]*organization.Organization, error) {
	return g.queryOrganizations(ctx, organizationFindQuery+" ORDER BY o.created_at")
}

func (g *PgOrganizationRepository) Ancestors(ctx context.Context, id uuid.UUID) ([]*organization.Organization, error) {
	return g.queryOrganizations(ctx, organizationAncestorsQuery, id)
}

func (g *PgOrganizationRepository) Create(ctx context.Context, entity *organization.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbOrg := toDBOrganization(entity)
	if _, err := tx.Exec(
		ctx,
		organizationInsertQuery,
		dbOrg.ID,
		dbOrg.Name,
		dbOrg.Code,
		dbOrg.OrgType,
		dbOrg.ParentID,
		dbOrg.IsActive,
		dbOrg.CreatedAt,
		dbOrg.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrOrganizationExists
		}
		return nil, errors.Wrap(err, "failed to insert organization")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgOrganizationRepository) Update(ctx context.Context, entity *organization.Organization) (*organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbOrg := toDBOrganization(entity)
	if _, err := tx.Exec(
		ctx,
		organizationUpdateQuery,
		dbOrg.ID,
		dbOrg.Name,
		dbOrg.Code,
		dbOrg.OrgType,
		dbOrg.ParentID,
		dbOrg.IsActive,
		dbOrg.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrOrganizationExists
		}
		return nil, errors.Wrap(err, "failed to update organization")
	}
	return g.GetByID(ctx, entity.ID())
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
