package permission

import (
	"context"

	"github.com/google/uuid"
)

// Code is an opaque capability string, e.g. "cases:read" or "users:manage".
type Code string

func (c Code) String() string {
	return string(c)
}

type Permission struct {
	ID   uuid.UUID
	Code Code
	Name string
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Permission, error)
	GetByCodes(ctx context.Context, codes []Code) ([]*Permission, error)
	// Save upserts the permission by ID. Used by the catalog seeder and
	// administrative tooling; never called on the request path.
	Save(ctx context.Context, p *Permission) error
}
