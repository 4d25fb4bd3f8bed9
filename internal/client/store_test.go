package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
)

// fakeAPI lets tests script each call and control when responses are
// delivered, to exercise overlapping-request behavior.
type fakeAPI struct {
	mu        sync.Mutex
	listCalls []ListOptions

	listFn   func(ctx context.Context, opts ListOptions) (Page, error)
	createFn func(ctx context.Context, d Draft) (core.Transaction, error)
	updateFn func(ctx context.Context, id string, p Patch) (core.Transaction, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeAPI) List(ctx context.Context, opts ListOptions) (Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, opts)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx, opts)
	}
	return Page{Data: []core.Transaction{}}, nil
}

func (f *fakeAPI) Create(ctx context.Context, d Draft) (core.Transaction, error) {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return core.Transaction{ID: "server-id", Type: core.Type(d.Type), Amount: d.Amount}, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, p Patch) (core.Transaction, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return core.Transaction{ID: id}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAPI) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{ID: id, Type: core.Expense, Amount: amount, Date: time.Now().UTC()}
}

func TestFetchPublishesResult(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context, opts ListOptions) (Page, error) {
			return Page{Data: []core.Transaction{tx("a", 1)}, Total: 7}, nil
		},
	}
	store := NewStore(api)

	if err := store.Fetch(context.Background(), ListOptions{Limit: 10}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("loading should be false after fetch")
	}
	if snap.Total != 7 || len(snap.Data) != 1 || snap.Data[0].ID != "a" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestFetchLastIssuedWins(t *testing.T) {
	// The first fetch's response is delayed until after the second fetch
	// completes; its stale result must be discarded.
	firstBlocked := make(chan struct{})
	releaseFirst := make(chan struct{})

	api := &fakeAPI{}
	api.listFn = func(ctx context.Context, opts ListOptions) (Page, error) {
		if opts.Page == 1 {
			close(firstBlocked)
			<-releaseFirst
			return Page{Data: []core.Transaction{tx("stale", 1)}, Total: 1}, nil
		}
		return Page{Data: []core.Transaction{tx("fresh", 2)}, Total: 2}, nil
	}
	store := NewStore(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Fetch(context.Background(), ListOptions{Page: 1})
	}()
	<-firstBlocked

	if err := store.Fetch(context.Background(), ListOptions{Page: 2}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	close(releaseFirst)
	<-done

	snap := store.Snapshot()
	if len(snap.Data) != 1 || snap.Data[0].ID != "fresh" {
		t.Fatalf("stale fetch overwrote newer data: %+v", snap.Data)
	}
	if snap.Total != 2 {
		t.Errorf("total = %d, want 2", snap.Total)
	}
}

func TestFetchErrorClearedBySuccess(t *testing.T) {
	fail := true
	api := &fakeAPI{
		listFn: func(ctx context.Context, opts ListOptions) (Page, error) {
			if fail {
				return Page{}, errors.New("boom")
			}
			return Page{Data: []core.Transaction{}}, nil
		},
	}
	store := NewStore(api)

	if err := store.Fetch(context.Background(), ListOptions{}); err == nil {
		t.Fatal("expected fetch error")
	}
	if snap := store.Snapshot(); snap.Err == nil {
		t.Error("snapshot should carry the fetch error")
	}

	fail = false
	if err := store.Fetch(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap := store.Snapshot(); snap.Err != nil {
		t.Errorf("error not cleared: %v", snap.Err)
	}
}

func TestAddOptimistic(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		createFn: func(ctx context.Context, d Draft) (core.Transaction, error) {
			close(started)
			<-release
			return core.Transaction{ID: "srv-1", Type: core.Expense, Amount: d.Amount}, nil
		},
	}
	store := NewStore(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := store.Add(context.Background(), Draft{Type: "expense", Amount: 9}); err != nil {
			t.Errorf("Add: %v", err)
		}
	}()
	<-started

	snap := store.Snapshot()
	if len(snap.Data) != 1 || !strings.HasPrefix(snap.Data[0].ID, "pending-") {
		t.Fatalf("pending entry missing: %+v", snap.Data)
	}
	if snap.Total != 1 {
		t.Errorf("total = %d, want 1", snap.Total)
	}

	close(release)
	<-done

	snap = store.Snapshot()
	if len(snap.Data) != 1 || snap.Data[0].ID != "srv-1" {
		t.Fatalf("pending entry not reconciled: %+v", snap.Data)
	}
}

func TestAddRollbackOnFailure(t *testing.T) {
	api := &fakeAPI{
		createFn: func(ctx context.Context, d Draft) (core.Transaction, error) {
			return core.Transaction{}, errors.New("create rejected")
		},
	}
	store := NewStore(api)

	if _, err := store.Add(context.Background(), Draft{Type: "expense", Amount: 9}); err == nil {
		t.Fatal("expected add error")
	}

	snap := store.Snapshot()
	if len(snap.Data) != 0 || snap.Total != 0 {
		t.Errorf("optimistic entry not rolled back: %+v", snap)
	}
	if snap.Err == nil {
		t.Error("snapshot should carry the create error")
	}
}

func TestUpdateRefetchesCurrentPage(t *testing.T) {
	api := &fakeAPI{}
	store := NewStore(api)
	opts := ListOptions{Page: 3, Limit: 5, Type: "expense"}
	if err := store.Fetch(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Update(context.Background(), "some-id", Patch{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := api.listCallCount(); got != 2 {
		t.Fatalf("list calls = %d, want 2", got)
	}
	if api.listCalls[1] != opts {
		t.Errorf("re-fetch used %+v, want %+v", api.listCalls[1], opts)
	}
}

func TestDeleteRefetchesCurrentPage(t *testing.T) {
	api := &fakeAPI{}
	store := NewStore(api)
	if err := store.Fetch(context.Background(), ListOptions{Limit: 20}); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(context.Background(), "some-id"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := api.listCallCount(); got != 2 {
		t.Errorf("list calls = %d, want 2", got)
	}
}

func TestDeleteWithoutPriorFetchSkipsRefetch(t *testing.T) {
	api := &fakeAPI{}
	store := NewStore(api)

	if err := store.Delete(context.Background(), "some-id"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := api.listCallCount(); got != 0 {
		t.Errorf("list calls = %d, want 0", got)
	}
}

func TestSummaryAggregatesLocalPage(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context, opts ListOptions) (Page, error) {
			return Page{Data: []core.Transaction{
				{ID: "1", Type: core.Income, Amount: 100},
				{ID: "2", Type: core.Expense, Amount: 40, Category: "food"},
				{ID: "3", Type: core.Expense, Amount: 10, Category: "food"},
			}, Total: 3}, nil
		},
	}
	store := NewStore(api)
	if err := store.Fetch(context.Background(), ListOptions{}); err != nil {
		t.Fatal(err)
	}

	sum := store.Summary()
	if sum.TotalIncome != 100 || sum.TotalExpense != 50 {
		t.Errorf("totals = %v/%v, want 100/50", sum.TotalIncome, sum.TotalExpense)
	}
}
