// Package storage implements the transaction document store over three
// interchangeable backends: MongoDB, SQLite and an in-memory store.
package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Filter narrows a List query. Zero values mean "not filtered".
// Date bounds are inclusive on both ends.
type Filter struct {
	Type      string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ListQuery combines a filter with pagination. Results are always sorted
// by date descending.
type ListQuery struct {
	Filter Filter
	Skip   int64
	Limit  int64
}

// UpdateSet holds the fields of a partial update. Nil fields keep their
// previous value on the stored record.
type UpdateSet struct {
	Type        *core.Type
	Amount      *float64
	Description *string
	Category    *string
	Date        *time.Time
}

// IsEmpty reports whether the update would change nothing.
func (u UpdateSet) IsEmpty() bool {
	return u.Type == nil && u.Amount == nil && u.Description == nil &&
		u.Category == nil && u.Date == nil
}

// AuditEntry is an append-only record of a mutation, written by the
// audit worker.
type AuditEntry struct {
	Action        string    `bson:"action" json:"action"`
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	OccurredAt    time.Time `bson:"occurredAt" json:"occurredAt"`
}

// Store is the document store owning all persisted Transaction state.
// Implementations assign a unique, never-reused id on Insert and return
// core.ErrNotFound when an id does not resolve.
type Store interface {
	// Insert persists tx and returns it with the assigned id.
	Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// List returns the matching page sorted by date descending, plus the
	// total count of matching records ignoring pagination.
	List(ctx context.Context, q ListQuery) ([]core.Transaction, int64, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	// Update merges set into the stored record and returns the result.
	Update(ctx context.Context, id string, set UpdateSet) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	// RecordEvent appends an audit entry.
	RecordEvent(ctx context.Context, e AuditEntry) error
	Close(ctx context.Context) error
}

// Matches reports whether tx satisfies the filter predicate: type and
// category by exact match, date by inclusive range.
func (f Filter) Matches(tx core.Transaction) bool {
	if f.Type != "" && string(tx.Type) != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	return true
}
