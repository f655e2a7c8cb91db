package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

const (
	permissionFindQuery = `SELECT p.id, p.code, p.name FROM permissions p`

	permissionUpsertQuery = `
		INSERT INTO permissions (id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name`
)

type PgPermissionRepository struct{}

func NewPermissionRepository() permission.Repository {
	return &PgPermissionRepository{}
}

func (g *PgPermissionRepository) queryPermissions(ctx context.Context, query string, args ...interface{}) ([]*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query permissions")
	}
	defer rows.Close()

	var permissions []*permission.Permission
	for rows.Next() {
		var dbPermission models.Permission
		if err := rows.Scan(&dbPermission.ID, &dbPermission.Code, &dbPermission.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan permission row")
		}
		entity, err := ToDomainPermission(&dbPermission)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map permission to domain")
		}
		permissions = append(permissions, entity)
	}
	return permissions, rows.Err()
}

func (g *PgPermissionRepository) GetAll(ctx context.Context) ([]*permission.Permission, error) {
	return g.queryPermissions(ctx, permissionFindQuery+" ORDER BY p.code")
}

func (g *PgPermissionRepository) GetByCodes(ctx context.Context, codes []permission.Code) ([]*permission.Permission, error) {
	values := make([]string, 0, len(codes))
	for _, c := range codes {
		values = append(values, c.String())
	}
	return g.queryPermissions(ctx, permissionFindQuery+" WHERE p.code = ANY($1) ORDER BY p.code", values)
}

func (g *PgPermissionRepository) Save(ctx context.Context, entity *permission.Permission) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	dbPermission := toDBPermission(entity)
	if _, err := tx.Exec(ctx, permissionUpsertQuery, dbPermission.ID, dbPermission.Code, dbPermission.Name); err != nil {
		return errors.Wrap(err, "failed to upsert permission")
	}
	return nil
}
