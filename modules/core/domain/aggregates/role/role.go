package role

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/entities/permission"
)

// Scope distinguishes organization-bound roles from global ones. Global
// roles (the super-admin tier) are never tied to a membership row.
type Scope string

const (
	ScopeGlobal       Scope = "global"
	ScopeOrganization Scope = "organization"
)

type Role interface {
	ID() uuid.UUID
	Name() string
	Scope() Scope
	// InheritsToDescendants reports whether permissions granted by this
	// role in a parent organization also apply in its descendants. Off by
	// default; deep hierarchies must not escalate silently.
	InheritsToDescendants() bool
	Permissions() []*permission.Permission
	CreatedAt() time.Time
	UpdatedAt() time.Time

	SetName(name string) Role
	SetPermissions(perms []*permission.Permission) Role
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Role, error)
	GetAll(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, r Role) (Role, error)
	Update(ctx context.Context, r Role) (Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Option func(*roleImpl)

func WithID(id uuid.UUID) Option {
	return func(r *roleImpl) {
		r.id = id
	}
}

func WithScope(scope Scope) Option {
	return func(r *roleImpl) {
		r.scope = scope
	}
}

func WithInheritsToDescendants(inherits bool) Option {
	return func(r *roleImpl) {
		r.inheritsToDescendants = inherits
	}
}

func WithPermissions(perms []*permission.Permission) Option {
	return func(r *roleImpl) {
		r.permissions = perms
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(r *roleImpl) {
		r.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(r *roleImpl) {
		r.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) Role {
	r := &roleImpl{
		id:        uuid.New(),
		name:      name,
		scope:     ScopeOrganization,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type roleImpl struct {
	id                    uuid.UUID
	name                  string
	scope                 Scope
	inheritsToDescendants bool
	permissions           []*permission.Permission
	createdAt             time.Time
	updatedAt             time.Time
}

func (r *roleImpl) ID() uuid.UUID {
	return r.id
}

func (r *roleImpl) Name() string {
	return r.name
}

func (r *roleImpl) Scope() Scope {
	return r.scope
}

func (r *roleImpl) InheritsToDescendants() bool {
	return r.inheritsToDescendants
}

func (r *roleImpl) Permissions() []*permission.Permission {
	return r.permissions
}

func (r *roleImpl) CreatedAt() time.Time {
	return r.createdAt
}

func (r *roleImpl) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *roleImpl) SetName(name string) Role {
	clone := *r
	clone.name = name
	clone.updatedAt = time.Now()
	return &clone
}

func (r *roleImpl) SetPermissions(perms []*permission.Permission) Role {
	clone := *r
	clone.permissions = perms
	clone.updatedAt = time.Now()
	return &clone
}
