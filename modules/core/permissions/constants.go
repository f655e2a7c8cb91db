package permissions

import (
	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
)

const (
	CasesRead           permission.Code = "cases:read"
	CasesManage         permission.Code = "cases:manage"
	UsersManage         permission.Code = "users:manage"
	RolesManage         permission.Code = "roles:manage"
	ReportsView         permission.Code = "reports:view"
	OrganizationsManage permission.Code = "organizations:manage"
)

var (
	CasesReadPermission = &permission.Permission{
		ID:   uuid.MustParse("8b6060b3-af5e-4ae0-b32d-b33695141066"),
		Code: CasesRead,
		Name: "Read cases",
	}
	CasesManagePermission = &permission.Permission{
		ID:   uuid.MustParse("13f011c8-1107-4957-ad19-70cfc167a775"),
		Code: CasesManage,
		Name: "Manage cases",
	}
	UsersManagePermission = &permission.Permission{
		ID:   uuid.MustParse("1c351fd3-9a2b-40b9-80b1-11ba81e645c8"),
		Code: UsersManage,
		Name: "Manage users",
	}
	RolesManagePermission = &permission.Permission{
		ID:   uuid.MustParse("547cded3-6754-4a05-aeb0-a38d12ed05ee"),
		Code: RolesManage,
		Name: "Manage roles",
	}
	ReportsViewPermission = &permission.Permission{
		ID:   uuid.MustParse("60f195ed-d373-41c3-a39d-bb7484850840"),
		Code: ReportsView,
		Name: "View reports",
	}
	OrganizationsManagePermission = &permission.Permission{
		ID:   uuid.MustParse("51d1025e-11fe-405e-9ab4-88078c28e110"),
		Code: OrganizationsManage,
		Name: "Manage organizations",
	}
)

// Permissions is the full catalog, upserted on startup by the seeder.
var Permissions = []*permission.Permission{
	CasesReadPermission,
	CasesManagePermission,
	UsersManagePermission,
	RolesManagePermission,
	ReportsViewPermission,
	OrganizationsManagePermission,
}
