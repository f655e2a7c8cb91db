package organization

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type distinguishes levels of the organization forest. Opaque to the
// authorization core; kept for administrative listings.
type Type string

const (
	TypeFirm       Type = "firm"
	TypeOffice     Type = "office"
	TypeDepartment Type = "department"
)

// Organization is a node in the tenant forest. Each node has at most one
// parent; the parent graph must stay acyclic (enforced by the organization
// service on create/update).
type Organization struct {
	id        uuid.UUID
	name      string
	code      string
	orgType   Type
	parentID  *uuid.UUID
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Organization)

func WithID(id uuid.UUID) Option {
	return func(o *Organization) {
		o.id = id
	}
}

func WithCode(code string) Option {
	return func(o *Organization) {
		o.code = NormalizeCode(code)
	}
}

func WithType(t Type) Option {
	return func(o *Organization) {
		o.orgType = t
	}
}

func WithParentID(parentID *uuid.UUID) Option {
	return func(o *Organization) {
		o.parentID = parentID
	}
}

func WithIsActive(isActive bool) Option {
	return func(o *Organization) {
		o.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(o *Organization) {
		o.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(o *Organization) {
		o.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) *Organization {
	o := &Organization{
		id:        uuid.New(),
		name:      name,
		orgType:   TypeFirm,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Organization) ID() uuid.UUID {
	return o.id
}

func (o *Organization) Name() string {
	return o.name
}

func (o *Organization) Code() string {
	return o.code
}

func (o *Organization) Type() Type {
	return o.orgType
}

func (o *Organization) ParentID() *uuid.UUID {
	return o.parentID
}

func (o *Organization) IsActive() bool {
	return o.isActive
}

func (o *Organization) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Organization) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Organization) SetName(name string) {
	o.name = name
	o.updatedAt = time.Now()
}

func (o *Organization) SetParentID(parentID *uuid.UUID) {
	o.parentID = parentID
	o.updatedAt = time.Now()
}

func (o *Organization) Deactivate() {
	o.isActive = false
	o.updatedAt = time.Now()
}

func (o *Organization) Activate() {
	o.isActive = true
	o.updatedAt = time.Now()
}

// NormalizeCode canonicalizes an organization code for unique comparison.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetByCode(ctx context.Context, code string) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	// Ancestors returns the parent chain of id ordered nearest-first,
	// excluding id itself. An empty slice means the node is a root.
	Ancestors(ctx context.Context, id uuid.UUID) ([]*Organization, error)
	Create(ctx context.Context, o *Organization) (*Organization, error)
	Update(ctx context.Context, o *Organization) (*Organization, error)
}
