package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// api is the slice of Client the Store depends on; tests substitute a
// fake to control response ordering.
type api interface {
	List(ctx context.Context, opts ListOptions) (Page, error)
	Create(ctx context.Context, d Draft) (core.Transaction, error)
	Update(ctx context.Context, id string, p Patch) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a point-in-time copy of the store state for rendering.
type Snapshot struct {
	Data    []core.Transaction
	Total   int64
	Loading bool
	Err     error
}

// Store mirrors server-side transaction state for a UI. All methods are
// safe for concurrent use.
//
// Fetch carries a sequence number so that when requests overlap, only
// the most recently issued one may publish its result; slower earlier
// responses are discarded instead of overwriting newer data.
type Store struct {
	apiClient api

	mu         sync.Mutex
	txs        []core.Transaction
	total      int64
	loading    bool
	err        error
	fetchSeq   uint64
	lastOpts   ListOptions
	hasFetched bool
}

func NewStore(apiClient api) *Store {
	return &Store{apiClient: apiClient}
}

// Fetch loads the page described by opts. When fetches overlap, the
// last one issued wins regardless of response order.
func (s *Store) Fetch(ctx context.Context, opts ListOptions) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.lastOpts = opts
	s.hasFetched = true
	s.mu.Unlock()

	page, err := s.apiClient.List(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq {
		// A newer fetch was issued while this one was in flight.
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.err = nil
	s.txs = page.Data
	s.total = page.Total
	return nil
}

// Add creates a transaction optimistically: a pending copy appears in
// the snapshot immediately and is reconciled with the server record on
// success or rolled back on failure.
func (s *Store) Add(ctx context.Context, d Draft) (core.Transaction, error) {
	pendingID := "pending-" + uuid.NewString()
	pending := core.Transaction{
		ID:          pendingID,
		Type:        core.Type(d.Type),
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Date:        time.Now().UTC(),
	}
	if d.Date != "" {
		if parsed, err := core.ParseDate(d.Date); err == nil {
			pending.Date = parsed
		}
	}

	s.mu.Lock()
	s.txs = append([]core.Transaction{pending}, s.txs...)
	s.total++
	s.mu.Unlock()

	created, err := s.apiClient.Create(ctx, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.removeLocked(pendingID) {
			s.total--
		}
		s.err = err
		return core.Transaction{}, err
	}
	s.err = nil
	// If an intervening fetch already displaced the pending entry there
	// is nothing to reconcile.
	s.replaceLocked(pendingID, created)
	return created, nil
}

// Update applies the patch on the server and re-fetches the current
// page so ordering and filters stay consistent.
func (s *Store) Update(ctx context.Context, id string, p Patch) (core.Transaction, error) {
	updated, err := s.apiClient.Update(ctx, id, p)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	if err := s.refetch(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete removes the transaction on the server and re-fetches the
// current page.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.apiClient.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}
	return s.refetch(ctx)
}

func (s *Store) refetch(ctx context.Context) error {
	s.mu.Lock()
	fetched := s.hasFetched
	opts := s.lastOpts
	s.mu.Unlock()
	if !fetched {
		return nil
	}
	return s.Fetch(ctx, opts)
}

// Snapshot returns a copy of the current state; mutating the returned
// slice does not affect the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]core.Transaction, len(s.txs))
	copy(data, s.txs)
	return Snapshot{Data: data, Total: s.total, Loading: s.loading, Err: s.err}
}

// Summary aggregates the locally held page.
func (s *Store) Summary() core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.txs)
}

func (s *Store) removeLocked(id string) bool {
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) replaceLocked(id string, with core.Transaction) bool {
	for i, tx := range s.txs {
		if tx.ID == id {
			s.txs[i] = with
			return true
		}
	}
	return false
}
