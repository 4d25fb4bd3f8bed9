// Package service implements the transaction API operations: input
// validation, filter shaping and translation to document store calls.
package service

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// Publisher emits audit events after successful mutations. Publishing is
// fire-and-forget: failures are logged and never fail the operation.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, e events.TransactionEvent) error
}

// TransactionInput carries the client-supplied fields for Create and
// Update. Nil pointers mean "not supplied", which Update preserves.
type TransactionInput struct {
	Type        *string      `json:"type"`
	Amount      *core.Amount `json:"amount"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Date        *string      `json:"date"`
}

// ListParams are the raw query parameters of a List request.
type ListParams struct {
	Type      string
	Category  string
	StartDate string
	EndDate   string
	Page      int64
	Limit     int64
}

type Service struct {
	store     storage.Store
	publisher Publisher
	logger    *slog.Logger
}

// New creates a Service. publisher may be nil to disable audit events.
func New(store storage.Store, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Create validates the input and inserts a new transaction. The store
// assigns the id; a missing date defaults to the creation time.
func (s *Service) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	var ve core.ValidationError

	var typ core.Type
	if in.Type == nil {
		ve.Add("type", "is required")
	} else if typ = core.Type(*in.Type); !typ.Valid() {
		ve.Add("type", "must be income or expense")
	}

	var amount float64
	if in.Amount == nil {
		ve.Add("amount", "is required")
	} else if !in.Amount.OK {
		ve.Add("amount", "must be numeric")
	} else {
		amount = in.Amount.Value
	}

	date := time.Now().UTC()
	if in.Date != nil {
		d, err := core.ParseDate(*in.Date)
		if err != nil {
			ve.Add("date", "must be an ISO-8601 date")
		} else {
			date = d
		}
	}

	if err := ve.Err(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{Type: typ, Amount: amount, Date: date}
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}

	stored, err := s.store.Insert(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction created",
		"transaction_id", stored.ID, "type", stored.Type, "amount", stored.Amount)
	s.publish(ctx, events.ActionCreated, stored.ID, &stored)
	return stored, nil
}

// List returns the filtered page sorted by date descending and the total
// count of matching records ignoring pagination. An empty result is not
// an error.
func (s *Service) List(ctx context.Context, p ListParams) ([]core.Transaction, int64, error) {
	q, err := buildQuery(p)
	if err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, q)
}

// Summarize aggregates every record matching the filter, ignoring
// pagination, into the dashboard summary.
func (s *Service) Summarize(ctx context.Context, p ListParams) (core.Summary, error) {
	q, err := buildQuery(p)
	if err != nil {
		return core.Summary{}, err
	}
	q.Skip = 0
	q.Limit = 0
	txs, _, err := s.store.List(ctx, q)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

func buildQuery(p ListParams) (storage.ListQuery, error) {
	var ve core.ValidationError

	filter := storage.Filter{Type: p.Type, Category: p.Category}
	if p.StartDate != "" {
		d, err := core.ParseDate(p.StartDate)
		if err != nil {
			ve.Add("startDate", "must be an ISO-8601 date")
		} else {
			filter.StartDate = &d
		}
	}
	if p.EndDate != "" {
		d, err := core.ParseDate(p.EndDate)
		if err != nil {
			ve.Add("endDate", "must be an ISO-8601 date")
		} else {
			filter.EndDate = &d
		}
	}
	if err := ve.Err(); err != nil {
		return storage.ListQuery{}, err
	}

	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	return storage.ListQuery{
		Filter: filter,
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Update applies a field-level merge: omitted fields keep their previous
// value. Supplied fields are validated first; the record is untouched on
// validation failure.
func (s *Service) Update(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	var (
		ve  core.ValidationError
		set storage.UpdateSet
	)

	if in.Type != nil {
		typ := core.Type(*in.Type)
		if !typ.Valid() {
			ve.Add("type", "must be income or expense")
		} else {
			set.Type = &typ
		}
	}
	if in.Amount != nil {
		if !in.Amount.OK {
			ve.Add("amount", "must be numeric")
		} else {
			set.Amount = &in.Amount.Value
		}
	}
	if in.Date != nil {
		d, err := core.ParseDate(*in.Date)
		if err != nil {
			ve.Add("date", "must be an ISO-8601 date")
		} else {
			set.Date = &d
		}
	}
	set.Description = in.Description
	set.Category = in.Category

	if err := ve.Err(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.Update(ctx, id, set)
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction updated", "transaction_id", id)
	s.publish(ctx, events.ActionUpdated, id, &updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	s.publish(ctx, events.ActionDeleted, id, nil)
	return nil
}

func (s *Service) publish(ctx context.Context, action events.Action, id string, tx *core.Transaction) {
	if s.publisher == nil {
		return
	}
	e := events.NewTransactionEvent(action, id, tx)
	if err := s.publisher.PublishTransactionEvent(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err, "action", action, "transaction_id", id)
	}
}
