package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID                  string
	Name                string
	Email               string
	IsSuperAdmin        bool
	SuperAdminGrantedAt sql.NullTime
	SuperAdminNotes     sql.NullString
	LastLoginAt         sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Organization struct {
	ID        string
	Name      string
	Code      string
	OrgType   string
	ParentID  sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role struct {
	ID                    string
	Name                  string
	Scope                 string
	InheritsToDescendants bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Permission struct {
	ID   string
	Code string
	Name string
}

type RolePermission struct {
	RoleID       string
	PermissionID string
}

type Membership struct {
	ID             string
	UserID         string
	OrganizationID string
	RoleID         string
	IsPrimary      bool
	CreatedAt      time.Time
}

type ActiveOrganizationPointer struct {
	UserID         string
	OrganizationID string
	UpdatedAt      time.Time
}
