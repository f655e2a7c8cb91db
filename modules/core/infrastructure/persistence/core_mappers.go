package persistence

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/role"
	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/entities/membership"
	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
	"github.com/openclerk/casedesk/modules/core/domain/entities/tenancy"
	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence/models"
)

func ToDomainUser(dbUser *models.User) (user.User, error) {
	email, err := internet.NewEmail(dbUser.Email)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(dbUser.ID)
	if err != nil {
		return nil, err
	}

	options := []user.Option{
		user.WithID(id),
		user.WithCreatedAt(dbUser.CreatedAt),
		user.WithUpdatedAt(dbUser.UpdatedAt),
	}

	if dbUser.IsSuperAdmin {
		var grantedAt *time.Time
		if dbUser.SuperAdminGrantedAt.Valid {
			t := dbUser.SuperAdminGrantedAt.Time
			grantedAt = &t
		}
		options = append(options, user.WithSuperAdmin(grantedAt, dbUser.SuperAdminNotes.String))
	}

	if dbUser.LastLoginAt.Valid {
		t := dbUser.LastLoginAt.Time
		options = append(options, user.WithLastLoginAt(&t))
	}

	return user.New(dbUser.Name, email, options...), nil
}

func toDBUser(entity user.User) *models.User {
	dbUser := &models.User{
		ID:           entity.ID().String(),
		Name:         entity.Name(),
		Email:        entity.Email().Value(),
		IsSuperAdmin: entity.IsSuperAdmin(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
	if at := entity.SuperAdminGrantedAt(); at != nil {
		dbUser.SuperAdminGrantedAt = sql.NullTime{Time: *at, Valid: true}
	}
	if notes := entity.SuperAdminNotes(); notes != "" {
		dbUser.SuperAdminNotes = sql.NullString{String: notes, Valid: true}
	}
	if at := entity.LastLoginAt(); at != nil {
		dbUser.LastLoginAt = sql.NullTime{Time: *at, Valid: true}
	}
	return dbUser
}

func ToDomainOrganization(dbOrg *models.Organization) (*organization.Organization, error) {
	id, err := uuid.Parse(dbOrg.ID)
	if err != nil {
		return nil, err
	}

	options := []organization.Option{
		organization.WithID(id),
		organization.WithCode(dbOrg.Code),
		organization.WithType(organization.Type(dbOrg.OrgType)),
		organization.WithIsActive(dbOrg.IsActive),
		organization.WithCreatedAt(dbOrg.CreatedAt),
		organization.WithUpdatedAt(dbOrg.UpdatedAt),
	}

	if dbOrg.ParentID.Valid {
		parentID, err := uuid.Parse(dbOrg.ParentID.String)
		if err != nil {
			return nil, err
		}
		options = append(options, organization.WithParentID(&parentID))
	}

	return organization.New(dbOrg.Name, options...), nil
}

func toDBOrganization(entity *organization.Organization) *models.Organization {
	dbOrg := &models.Organization{
		ID:        entity.ID().String(),
		Name:      entity.Name(),
		Code:      entity.Code(),
		OrgType:   string(entity.Type()),
		IsActive:  entity.IsActive(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
	if parentID := entity.ParentID(); parentID != nil {
		dbOrg.ParentID = sql.NullString{String: parentID.String(), Valid: true}
	}
	return dbOrg
}

func ToDomainRole(dbRole *models.Role, permissions []*permission.Permission) (role.Role, error) {
	id, err := uuid.Parse(dbRole.ID)
	if err != nil {
		return nil, err
	}

	return role.New(
		dbRole.Name,
		role.WithID(id),
		role.WithScope(role.Scope(dbRole.Scope)),
		role.WithInheritsToDescendants(dbRole.InheritsToDescendants),
		role.WithPermissions(permissions),
		role.WithCreatedAt(dbRole.CreatedAt),
		role.WithUpdatedAt(dbRole.UpdatedAt),
	), nil
}

func toDBRole(entity role.Role) (*models.Role, []*models.RolePermission) {
	rolePermissions := make([]*models.RolePermission, 0, len(entity.Permissions()))
	for _, p := range entity.Permissions() {
		rolePermissions = append(rolePermissions, &models.RolePermission{
			RoleID:       entity.ID().String(),
			PermissionID: p.ID.String(),
		})
	}
	return &models.Role{
		ID:                    entity.ID().String(),
		Name:                  entity.Name(),
		Scope:                 string(entity.Scope()),
		InheritsToDescendants: entity.InheritsToDescendants(),
		CreatedAt:             entity.CreatedAt(),
		UpdatedAt:             entity.UpdatedAt(),
	}, rolePermissions
}

func ToDomainPermission(dbPermission *models.Permission) (*permission.Permission, error) {
	id, err := uuid.Parse(dbPermission.ID)
	if err != nil {
		return nil, err
	}
	return &permission.Permission{
		ID:   id,
		Code: permission.Code(dbPermission.Code),
		Name: dbPermission.Name,
	}, nil
}

func toDBPermission(entity *permission.Permission) *models.Permission {
	return &models.Permission{
		ID:   entity.ID.String(),
		Code: entity.Code.String(),
		Name: entity.Name,
	}
}

func ToDomainMembership(dbMembership *models.Membership) (*membership.Membership, error) {
	id, err := uuid.Parse(dbMembership.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(dbMembership.UserID)
	if err != nil {
		return nil, err
	}
	organizationID, err := uuid.Parse(dbMembership.OrganizationID)
	if err != nil {
		return nil, err
	}
	roleID, err := uuid.Parse(dbMembership.RoleID)
	if err != nil {
		return nil, err
	}

	return membership.New(
		userID,
		organizationID,
		roleID,
		membership.WithID(id),
		membership.WithIsPrimary(dbMembership.IsPrimary),
		membership.WithCreatedAt(dbMembership.CreatedAt),
	), nil
}

func toDBMembership(entity *membership.Membership) *models.Membership {
	return &models.Membership{
		ID:             entity.ID().String(),
		UserID:         entity.UserID().String(),
		OrganizationID: entity.OrganizationID().String(),
		RoleID:         entity.RoleID().String(),
		IsPrimary:      entity.IsPrimary(),
		CreatedAt:      entity.CreatedAt(),
	}
}

func ToDomainActivePointer(dbPointer *models.ActiveOrganizationPointer) (*tenancy.ActivePointer, error) {
	userID, err := uuid.Parse(dbPointer.UserID)
	if err != nil {
		return nil, err
	}
	organizationID, err := uuid.Parse(dbPointer.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &tenancy.ActivePointer{
		UserID:         userID,
		OrganizationID: organizationID,
		UpdatedAt:      dbPointer.UpdatedAt,
	}, nil
}
