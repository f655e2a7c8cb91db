package user

import (
	"context"
	"time"
)

type CreatedEvent struct {
	Data    User
	Result  User
	Session SessionInfo
}

// ElevatedEvent fires when a user is first granted the super-admin flag.
// Re-running the elevation check against an already elevated user does not
// publish a second event.
type ElevatedEvent struct {
	Result    User
	GrantedAt time.Time
}

// SessionInfo is the slice of request metadata events carry for auditing.
type SessionInfo struct {
	IP        string
	UserAgent string
}

func NewCreatedEvent(_ context.Context, data User) *CreatedEvent {
	return &CreatedEvent{Data: data}
}

func NewElevatedEvent(_ context.Context, result User, grantedAt time.Time) *ElevatedEvent {
	return &ElevatedEvent{Result: result, GrantedAt: grantedAt}
}
