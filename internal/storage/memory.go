package storage

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store used for local
// development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	txs    []core.Transaction
	events []AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.NewString()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *MemoryStore) List(ctx context.Context, q ListQuery) ([]core.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []core.Transaction
	for _, tx := range s.txs {
		if q.Filter.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := int64(len(matched))
	start := q.Skip
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	page := make([]core.Transaction, end-start)
	copy(page, matched[start:end])
	return page, total, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, id string, set UpdateSet) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		if set.Type != nil {
			s.txs[i].Type = *set.Type
		}
		if set.Amount != nil {
			s.txs[i].Amount = *set.Amount
		}
		if set.Description != nil {
			s.txs[i].Description = *set.Description
		}
		if set.Category != nil {
			s.txs[i].Category = *set.Category
		}
		if set.Date != nil {
			s.txs[i].Date = *set.Date
		}
		return s.txs[i], nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *MemoryStore) RecordEvent(ctx context.Context, e AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of the recorded audit entries.
func (s *MemoryStore) Events() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AuditEntry, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
