package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

var (
	ErrRoleNotFound = errors.New("role not found")
)

const (
	roleFindQuery = `
		SELECT
			r.id,
			r.name,
			r.scope,
			r.inherits_to_descendants,
			r.created_at,
			r.updated_at
		FROM roles r`

	rolePermissionsQuery = `
		SELECT p.id, p.code, p.name
		FROM role_permissions rp
		JOIN permissions p ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.code`

	roleInsertQuery = `
		INSERT INTO roles (id, name, scope, inherits_to_descendants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	roleUpdateQuery = `
		UPDATE roles
		SET name = $2, scope = $3, inherits_to_descendants = $4, updated_at = $5
		WHERE id = $1`

	roleDeleteQuery = `DELETE FROM roles WHERE id = $1`

	rolePermissionDeleteQuery = `DELETE FROM role_permissions WHERE role_id = $1`
	rolePermissionInsertQuery = `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`
)

type PgRoleRepository struct{}

func NewRoleRepository() role.Repository {
	return &PgRoleRepository{}
}

func (g *PgRoleRepository) rolePermissions(ctx context.Context, roleID string) ([]*permission.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, rolePermissionsQuery, roleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query role permissions")
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

func (g *PgRoleRepository) queryRoles(ctx context.Context, query string, args ...interface{}) ([]role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query roles")
	}
	defer rows.Close()

	var dbRoles []*models.Role
	for rows.Next() {
		var dbRole models.Role
		if err := rows.Scan(
			&dbRole.ID,
			&dbRole.Name,
			&dbRole.Scope,
			&dbRole.InheritsToDescendants,
			&dbRole.CreatedAt,
			&dbRole.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan role row")
		}
		dbRoles = append(dbRoles, &dbRole)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roles := make([]role.Role, 0, len(dbRoles))
	for _, dbRole := range dbRoles {
		permissions, err := g.rolePermissions(ctx, dbRole.ID)
		if err != nil {
			return nil, err
		}
		entity, err := ToDomainRole(dbRole, permissions)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map role to domain")
		}
		roles = append(roles, entity)
	}
	return roles, nil
}

func (g *PgRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (role.Role, error) {
	roles, err := g.queryRoles(ctx, roleFindQuery+" WHERE r.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, ErrRoleNotFound
	}
	return roles[0], nil
}

func (g *PgRoleRepository) GetAll(ctx context.Context) ([]role.Role, error) {
	return g.queryRoles(ctx, roleFindQuery+" ORDER BY r.name")
}

func (g *PgRoleRepository) Create(ctx context.Context, entity role.Role) (role.Role, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (role.Role, error) {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get transaction")
		}

		dbRole, rolePermissions := toDBRole(entity)
		if _, err := tx.Exec(
			txCtx,
			roleInsertQuery,
			dbRole.ID,
			dbRole.Name,
			dbRole.Scope,
			dbRole.InheritsToDescendants,
			dbRole.CreatedAt,
			dbRole.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to insert role")
		}
		for _, rp := range rolePermissions {
			if _, err := tx.Exec(txCtx, rolePermissionInsertQuery, rp.RoleID, rp.PermissionID); err != nil {
				return nil, errors.Wrap(err, "failed to insert role permission")
			}
		}
		return g.GetByID(txCtx, entity.ID())
	})
}

func (g *PgRoleRepository) Update(ctx context.Context, entity role.Role) (role.Role, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (role.Role, error) {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get transaction")
		}

		dbRole, rolePermissions := toDBRole(entity)
		if _, err := tx.Exec(
			txCtx,
			roleUpdateQuery,
			dbRole.ID,
			dbRole.Name,
			dbRole.Scope,
			dbRole.InheritsToDescendants,
			dbRole.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to update role")
		}
		if _, err := tx.Exec(txCtx, rolePermissionDeleteQuery, dbRole.ID); err != nil {
			return nil, errors.Wrap(err, "failed to delete role permissions")
		}
		for _, rp := range rolePermissions {
			if _, err := tx.Exec(txCtx, rolePermissionInsertQuery, rp.RoleID, rp.PermissionID); err != nil {
				return nil, errors.Wrap(err, "failed to insert role permission")
			}
		}
		return g.GetByID(txCtx, entity.ID())
	})
}

func (g *PgRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return errors.Wrap(err, "failed to get transaction")
		}
		if _, err := tx.Exec(txCtx, rolePermissionDeleteQuery, id); err != nil {
			return errors.Wrap(err, "failed to delete role permissions")
		}
		tag, err := tx.Exec(txCtx, roleDeleteQuery, id)
		if err != nil {
			return errors.Wrap(err, "failed to delete role")
		}
		if tag.RowsAffected() == 0 {
			return ErrRoleNotFound
		}
		return nil
	})
}
