package memory

import (
	"context"
	"testing"

	"julius/internal/core"
)

func TestWriteAndReadExports(t *testing.T) {
	store := New()
	summary := core.HomeSummary{
		Year:          2025,
		Month:         3,
		TotalIncomes:  core.Money{Cents: 500000},
		TotalExpenses: core.Money{Cents: 400000},
		Balance:       core.Money{Cents: 100000},
	}

	if err := store.WriteMonthSummary(context.Background(), "u1", summary); err != nil {
		t.Fatalf("WriteMonthSummary() error = %v", err)
	}
	if err := store.WriteMonthSummary(context.Background(), "u1", summary); err != nil {
		t.Fatalf("WriteMonthSummary() error = %v", err)
	}

	exports := store.Exports("u1", 2025, 3)
	if len(exports) != 2 {
		t.Fatalf("len(exports) = %d, want 2 (re-export appends)", len(exports))
	}
	if exports[0].Balance.Cents != 100000 {
		t.Errorf("Balance = %d, want 100000", exports[0].Balance.Cents)
	}

	if got := store.Exports("u1", 2025, 4); len(got) != 0 {
		t.Errorf("Exports for other month = %v, want empty", got)
	}
}
