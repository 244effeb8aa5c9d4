package shared

import (
	"time"

	"github.com/google/uuid"
)

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key         string
	BuyerID     uuid.UUID
	Status      string
	RequestHash string
	OrderID     *int64
	ExpiresAt   time.Time
}

const (
	EventOrderApproved = "order.approved"
	EventOrderPending  = "order.pending"
	EventOrderFailed   = "order.failed"
	EventOrderExpired  = "order.expired"
)

// OrderEvent is an outbox row. Payload is the JSON body published to the broker.
type OrderEvent struct {
	ID          uuid.UUID
	OrderID     int64
	Type        string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
