package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
	"github.com/openclerk/casedesk/pkg/composables"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	userFindQuery = `
		SELECT
			u.id,
			u.name,
			u.email,
			u.is_super_admin,
			u.super_admin_granted_at,
			u.super_admin_notes,
			u.last_login_at,
			u.created_at,
			u.updated_at
		FROM users u`

	userInsertQuery = `
		INSERT INTO users (id, name, email, is_super_admin, super_admin_granted_at, super_admin_notes, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	userUpdateQuery = `
		UPDATE users
		SET name = $2, email = $3, updated_at = $4
		WHERE id = $1`

	// Elevation is idempotent: the WHERE clause makes re-running a no-op, and
	// RowsAffected tells the caller whether this call performed the flip.
	userElevateQuery = `
		UPDATE users
		SET is_super_admin = true, super_admin_granted_at = NOW(), super_admin_notes = $2, updated_at = NOW()
		WHERE id = $1 AND is_super_admin = false`

	userTouchLastLoginQuery = `UPDATE users SET last_login_at = NOW() WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var dbUser models.User
		if err := rows.Scan(
			&dbUser.ID,
			&dbUser.Name,
			&dbUser.Email,
			&dbUser.IsSuperAdmin,
			&dbUser.SuperAdminGrantedAt,
			&dbUser.SuperAdminNotes,
			&dbUser.LastLoginAt,
			&dbUser.CreatedAt,
			&dbUser.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		entity, err := ToDomainUser(&dbUser)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map user to domain")
		}
		users = append(users, entity)
	}
	return users, rows.Err()
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email internet.Email) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE lower(u.email) = lower($1)", email.Value())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) Create(ctx context.Context, entity user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbUser := toDBUser(entity)
	if _, err := tx.Exec(
		ctx,
		userInsertQuery,
		dbUser.ID,
		dbUser.Name,
		dbUser.Email,
		dbUser.IsSuperAdmin,
		dbUser.SuperAdminGrantedAt,
		dbUser.SuperAdminNotes,
		dbUser.LastLoginAt,
		dbUser.CreatedAt,
		dbUser.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert user")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgUserRepository) Update(ctx context.Context, entity user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbUser := toDBUser(entity)
	if _, err := tx.Exec(ctx, userUpdateQuery, dbUser.ID, dbUser.Name, dbUser.Email, dbUser.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgUserRepository) Elevate(ctx context.Context, id uuid.UUID, notes string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, userElevateQuery, id, notes)
	if err != nil {
		return false, errors.Wrap(err, "failed to elevate user")
	}
	return tag.RowsAffected() > 0, nil
}

func (g *PgUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, userTouchLastLoginQuery, id); err != nil {
		return errors.Wrap(err, "failed to update last login")
	}
	return nil
}
