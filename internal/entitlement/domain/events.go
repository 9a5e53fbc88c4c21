package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for entitlement events.
const (
	RoutingKeyCustomerInfoChanged = "entitle.customer.changed"
)

// CustomerInfoChanged is published whenever the authoritative in-memory
// snapshot is replaced.
type CustomerInfoChanged struct {
	EventID    uuid.UUID         `json:"eventId"`
	UserID     string            `json:"userId"`
	OccurredAt time.Time         `json:"occurredAt"`
	Snapshot   *CustomerSnapshot `json:"snapshot"`
}

// NewCustomerInfoChanged creates the event for a freshly applied snapshot.
func NewCustomerInfoChanged(snapshot *CustomerSnapshot) CustomerInfoChanged {
	return CustomerInfoChanged{
		EventID:    uuid.New(),
		UserID:     snapshot.UserID,
		OccurredAt: time.Now().UTC(),
		Snapshot:   snapshot,
	}
}

// RoutingKey returns the bus routing key for the event.
func (e CustomerInfoChanged) RoutingKey() string {
	return RoutingKeyCustomerInfoChanged
}
