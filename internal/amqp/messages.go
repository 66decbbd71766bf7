package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mutation operations carried by transaction events.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// TransactionEvent notifies that one transaction was mutated. It carries
// identifiers only; consumers that need the document fetch it themselves.
type TransactionEvent struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an event stamped with the current time.
func NewTransactionEvent(op, id, ownerID string) *TransactionEvent {
	return &TransactionEvent{
		Op:        op,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// Validate rejects events with an unknown operation or missing identifiers.
func (e *TransactionEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown operation %q", e.Op)
	}
	if e.ID == "" {
		return fmt.Errorf("missing transaction id")
	}
	if e.OwnerID == "" {
		return fmt.Errorf("missing owner id")
	}
	return nil
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON parses an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
