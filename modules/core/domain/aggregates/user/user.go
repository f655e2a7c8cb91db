package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
)

type User interface {
	ID() uuid.UUID
	Email() internet.Email
	Name() string
	IsSuperAdmin() bool
	SuperAdminGrantedAt() *time.Time
	SuperAdminNotes() string
	LastLoginAt() *time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	SetName(name string) User
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByEmail matches case-insensitively against the canonical address.
	GetByEmail(ctx context.Context, email internet.Email) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	// Elevate idempotently flips the super-admin flag, recording the grant
	// timestamp and audit notes. Returns true only when this call performed
	// the flip; re-running against an elevated user returns false, nil.
	Elevate(ctx context.Context, id uuid.UUID, notes string) (bool, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type Option func(*userImpl)

func WithID(id uuid.UUID) Option {
	return func(u *userImpl) {
		u.id = id
	}
}

func WithSuperAdmin(grantedAt *time.Time, notes string) Option {
	return func(u *userImpl) {
		u.isSuperAdmin = true
		u.superAdminGrantedAt = grantedAt
		u.superAdminNotes = notes
	}
}

func WithLastLoginAt(at *time.Time) Option {
	return func(u *userImpl) {
		u.lastLoginAt = at
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(u *userImpl) {
		u.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(u *userImpl) {
		u.updatedAt = updatedAt
	}
}

func New(name string, email internet.Email, opts ...Option) User {
	u := &userImpl{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type userImpl struct {
	id                  uuid.UUID
	email               internet.Email
	name                string
	isSuperAdmin        bool
	superAdminGrantedAt *time.Time
	superAdminNotes     string
	lastLoginAt         *time.Time
	createdAt           time.Time
	updatedAt           time.Time
}

func (u *userImpl) ID() uuid.UUID {
	return u.id
}

func (u *userImpl) Email() internet.Email {
	return u.email
}

func (u *userImpl) Name() string {
	return u.name
}

func (u *userImpl) IsSuperAdmin() bool {
	return u.isSuperAdmin
}

func (u *userImpl) SuperAdminGrantedAt() *time.Time {
	return u.superAdminGrantedAt
}

func (u *userImpl) SuperAdminNotes() string {
	return u.superAdminNotes
}

func (u *userImpl) LastLoginAt() *time.Time {
	return u.lastLoginAt
}

func (u *userImpl) CreatedAt() time.Time {
	return u.createdAt
}

func (u *userImpl) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *userImpl) SetName(name string) User {
	clone := *u
	clone.name = name
	clone.updatedAt = time.Now()
	return &clone
}
