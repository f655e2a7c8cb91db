package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Membership grants a user a role inside one organization. Composite-unique
// on (user, organization); at most one membership per user is primary.
type Membership struct {
	id             uuid.UUID
	userID         uuid.UUID
	organizationID uuid.UUID
	roleID         uuid.UUID
	isPrimary      bool
	createdAt      time.Time
}

type Option func(*Membership)

func WithID(id uuid.UUID) Option {
	return func(m *Membership) {
		m.id = id
	}
}

func WithIsPrimary(isPrimary bool) Option {
	return func(m *Membership) {
		m.isPrimary = isPrimary
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(m *Membership) {
		m.createdAt = createdAt
	}
}

func New(userID, organizationID, roleID uuid.UUID, opts ...Option) *Membership {
	m := &Membership{
		id:             uuid.New(),
		userID:         userID,
		organizationID: organizationID,
		roleID:         roleID,
		createdAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Membership) ID() uuid.UUID {
	return m.id
}

func (m *Membership) UserID() uuid.UUID {
	return m.userID
}

func (m *Membership) OrganizationID() uuid.UUID {
	return m.organizationID
}

func (m *Membership) RoleID() uuid.UUID {
	return m.roleID
}

func (m *Membership) IsPrimary() bool {
	return m.isPrimary
}

func (m *Membership) CreatedAt() time.Time {
	return m.createdAt
}

type Repository interface {
	// GetByUser returns all memberships of the user ordered by creation
	// time ascending; the order is the deterministic tie-break used by
	// tenant-context resolution.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error)
	GetByUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error)
	Create(ctx context.Context, m *Membership) (*Membership, error)
	Delete(ctx context.Context, userID, organizationID uuid.UUID) error
	// SetPrimary marks the given membership primary and clears the flag on
	// the user's other memberships in one transaction.
	SetPrimary(ctx context.Context, userID, organizationID uuid.UUID) error
}
