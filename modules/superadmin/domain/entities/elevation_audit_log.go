package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ElevationAuditLog records a super-admin grant or other privileged action.
// Email and name are snapshots; the user row may change after the fact.
type ElevationAuditLog struct {
	ID         int64
	ActorID    *uuid.UUID
	ActorEmail string
	Action     string
	TargetID   *uuid.UUID
	Payload    json.RawMessage
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}
