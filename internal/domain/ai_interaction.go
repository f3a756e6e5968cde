package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIInteraction is an append-only audit record of a recommendation request
// and the full response payload, kept for later analysis.
type AIInteraction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Query     json.RawMessage
	Response  json.RawMessage
	CreatedAt time.Time
}
