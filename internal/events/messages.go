// Package events carries audit events for transaction mutations over
// AMQP. The server publishes after every successful mutation; the worker
// consumes and records an append-only audit trail.
package events

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent describes a single mutation. Transaction is nil for
// deletions, where only the id remains.
type TransactionEvent struct {
	Action        Action            `json:"action"`
	TransactionID string            `json:"transactionId"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	At            time.Time         `json:"at"`
}

func NewTransactionEvent(action Action, id string, tx *core.Transaction) TransactionEvent {
	return TransactionEvent{
		Action:        action,
		TransactionID: id,
		Transaction:   tx,
		At:            time.Now().UTC(),
	}
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
