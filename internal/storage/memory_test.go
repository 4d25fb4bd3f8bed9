package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func seed(t *testing.T, s Store, txs ...core.Transaction) []core.Transaction {
	t.Helper()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		stored, err := s.Insert(context.Background(), tx)
		if err != nil {
			t.Fatalf("seed insert: %v", err)
		}
		out = append(out, stored)
	}
	return out
}

func TestMemoryInsertAssignsUniqueIDs(t *testing.T) {
	s := NewMemoryStore()
	stored := seed(t, s,
		core.Transaction{Type: core.Income, Amount: 1, Date: date("2024-01-01")},
		core.Transaction{Type: core.Expense, Amount: 2, Date: date("2024-01-02")},
	)
	if stored[0].ID == "" || stored[1].ID == "" {
		t.Fatal("expected non-empty ids")
	}
	if stored[0].ID == stored[1].ID {
		t.Fatal("ids must be unique")
	}

	got, err := s.Get(context.Background(), stored[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != stored[0] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, stored[0])
	}
}

func TestMemoryListDateRangeInclusive(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		core.Transaction{Type: core.Expense, Amount: 1, Date: date("2023-12-31")},
		core.Transaction{Type: core.Expense, Amount: 2, Date: date("2024-01-01")},
		core.Transaction{Type: core.Expense, Amount: 3, Date: date("2024-01-15")},
		core.Transaction{Type: core.Expense, Amount: 4, Date: date("2024-01-31")},
		core.Transaction{Type: core.Expense, Amount: 5, Date: date("2024-02-01")},
	)

	start, end := date("2024-01-01"), date("2024-01-31")
	txs, total, err := s.List(context.Background(), ListQuery{
		Filter: Filter{StartDate: &start, EndDate: &end},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(txs) != 3 {
		t.Fatalf("got %d records (total %d), want 3: boundary dates must be included", len(txs), total)
	}
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			t.Errorf("record dated %v is outside [%v, %v]", tx.Date, start, end)
		}
	}
}

func TestMemoryListTypeAndCategoryFilter(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		core.Transaction{Type: core.Income, Amount: 100, Category: "salary", Date: date("2024-03-01")},
		core.Transaction{Type: core.Expense, Amount: 40, Category: "food", Date: date("2024-03-02")},
		core.Transaction{Type: core.Expense, Amount: 10, Category: "food", Date: date("2024-03-03")},
		core.Transaction{Type: core.Expense, Amount: 9, Category: "rent", Date: date("2024-03-04")},
	)

	txs, total, err := s.List(context.Background(), ListQuery{
		Filter: Filter{Type: "expense", Category: "food"},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Category != "food" {
			t.Errorf("filter leaked record %+v", tx)
		}
	}

	_, total, err = s.List(context.Background(), ListQuery{Filter: Filter{Type: "transfer"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Fatalf("unknown type should match nothing, total = %d", total)
	}
}

func TestMemoryListPagination(t *testing.T) {
	s := NewMemoryStore()
	// Five records, inserted out of order; listed order is date descending.
	seed(t, s,
		core.Transaction{Type: core.Expense, Amount: 3, Date: date("2024-01-03")},
		core.Transaction{Type: core.Expense, Amount: 1, Date: date("2024-01-01")},
		core.Transaction{Type: core.Expense, Amount: 5, Date: date("2024-01-05")},
		core.Transaction{Type: core.Expense, Amount: 2, Date: date("2024-01-02")},
		core.Transaction{Type: core.Expense, Amount: 4, Date: date("2024-01-04")},
	)

	// page=2, limit=2: records 3 and 4 of the descending order (amounts 3, 2).
	txs, total, err := s.List(context.Background(), ListQuery{Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5 regardless of pagination", total)
	}
	if len(txs) != 2 || txs[0].Amount != 3 || txs[1].Amount != 2 {
		t.Fatalf("unexpected page: %+v", txs)
	}

	// Skip past the end yields an empty page, not an error.
	txs, total, err = s.List(context.Background(), ListQuery{Skip: 10, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 0 || total != 5 {
		t.Fatalf("got %d records (total %d), want empty page with total 5", len(txs), total)
	}
}

func TestMemoryUpdatePartialMerge(t *testing.T) {
	s := NewMemoryStore()
	stored := seed(t, s, core.Transaction{
		Type:        core.Expense,
		Amount:      99.5,
		Description: "flat",
		Category:    "misc",
		Date:        date("2024-06-01"),
	})[0]

	category := "rent"
	got, err := s.Update(context.Background(), stored.ID, UpdateSet{Category: &category})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Category != "rent" {
		t.Errorf("Category = %q, want rent", got.Category)
	}
	if got.Type != stored.Type || got.Amount != stored.Amount ||
		got.Description != stored.Description || !got.Date.Equal(stored.Date) {
		t.Errorf("untouched fields changed: got %+v, want %+v", got, stored)
	}

	if _, err := s.Update(context.Background(), "no-such-id", UpdateSet{Category: &category}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDeleteThenGet(t *testing.T) {
	s := NewMemoryStore()
	stored := seed(t, s, core.Transaction{Type: core.Income, Amount: 5, Date: date("2024-01-01")})[0]

	if err := s.Delete(context.Background(), stored.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(context.Background(), stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(context.Background(), stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryRecordEvent(t *testing.T) {
	s := NewMemoryStore()
	e := AuditEntry{Action: "created", TransactionID: "abc", OccurredAt: date("2024-01-01")}
	if err := s.RecordEvent(context.Background(), e); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	events := s.Events()
	if len(events) != 1 || events[0] != e {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestFilterMatches(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-31")
	tx := core.Transaction{Type: core.Expense, Category: "food", Date: date("2024-01-15")}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"type match", Filter{Type: "expense"}, true},
		{"type mismatch", Filter{Type: "income"}, false},
		{"category match", Filter{Category: "food"}, true},
		{"category mismatch", Filter{Category: "rent"}, false},
		{"inside range", Filter{StartDate: &start, EndDate: &end}, true},
		{"before range", Filter{StartDate: &end}, false},
		{"after range", Filter{EndDate: &start}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tx); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}

	// A record dated exactly on a boundary is included.
	boundary := core.Transaction{Type: core.Expense, Date: start}
	if !(Filter{StartDate: &start, EndDate: &end}).Matches(boundary) {
		t.Error("record on start boundary must match")
	}
}
