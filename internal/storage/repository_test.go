package storage

import (
	"context"
	"path/filepath"
	"testing"

	"julius/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "julius_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *SQLiteRepository, tx core.Transaction) {
	t.Helper()
	if _, err := repo.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedTransaction(t, repo, core.Transaction{
		UserID:       "u1",
		Description:  "market",
		Amount:       core.Money{Cents: 4500},
		Type:         core.TypeExpense,
		Status:       core.StatusCompleted,
		Month:        3,
		Year:         2025,
		CategoryID:   "cat-food",
		CategoryName: "Food",
	})
	seedTransaction(t, repo, core.Transaction{
		UserID:      "u1",
		Description: "other month",
		Amount:      core.Money{Cents: 100},
		Type:        core.TypeExpense,
		Status:      core.StatusCompleted,
		Month:       4,
		Year:        2025,
	})
	seedTransaction(t, repo, core.Transaction{
		UserID:      "someone-else",
		Description: "not mine",
		Amount:      core.Money{Cents: 100},
		Type:        core.TypeExpense,
		Status:      core.StatusCompleted,
		Month:       3,
		Year:        2025,
	})

	txs, err := repo.TransactionsByMonth(ctx, "u1", 3, 2025)
	if err != nil {
		t.Fatalf("TransactionsByMonth() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}
	got := txs[0]
	if got.Description != "market" || got.Amount.Cents != 4500 || got.CategoryName != "Food" {
		t.Errorf("transaction = %+v", got)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: "u1",
		Type:   "transfer",
	})
	if err == nil {
		t.Fatal("CreateTransaction() error = nil for invalid transaction")
	}
}

func TestPendingBillKeys(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := core.Transaction{
		UserID:      "u1",
		Description: "card purchase",
		Amount:      core.Money{Cents: 1000},
		Type:        core.TypeExpense,
		Status:      core.StatusCompleted,
		Year:        2025,
	}

	unpaid := base
	unpaid.Month = 3
	unpaid.CreditCardID = "c1"
	seedTransaction(t, repo, unpaid)

	settled := base
	settled.Month = 2
	settled.CreditCardID = "c1"
	seedTransaction(t, repo, settled)

	cash := base
	cash.Month = 3
	seedTransaction(t, repo, cash)

	if err := repo.SetBillPaid(ctx, "u1", core.BillKey{CardID: "c1", Month: 2, Year: 2025}, true); err != nil {
		t.Fatalf("SetBillPaid() error = %v", err)
	}

	pending, err := repo.PendingBillKeys(ctx, "u1")
	if err != nil {
		t.Fatalf("PendingBillKeys() error = %v", err)
	}

	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1 (%v)", len(pending), pending)
	}
	if _, ok := pending[core.BillKey{CardID: "c1", Month: 3, Year: 2025}]; !ok {
		t.Errorf("pending = %v, want march bill", pending)
	}
}

func TestBillPaymentsAbsentMeansUnpaid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetBillPaid(ctx, "u1", core.BillKey{CardID: "c1", Month: 3, Year: 2025}, true); err != nil {
		t.Fatalf("SetBillPaid() error = %v", err)
	}

	paid, err := repo.BillPayments(ctx, "u1")
	if err != nil {
		t.Fatalf("BillPayments() error = %v", err)
	}
	if !paid[core.BillKey{CardID: "c1", Month: 3, Year: 2025}] {
		t.Error("recorded payment missing from map")
	}
	if paid[core.BillKey{CardID: "c2", Month: 3, Year: 2025}] {
		t.Error("absent bill reported as paid")
	}
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateGoal(ctx, core.Goal{
		UserID:       "u1",
		Name:         "Trip",
		Type:         core.TypeIncome,
		TargetAmount: core.Money{Cents: 1000000},
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	if err := repo.AddGoalProgress(ctx, "u1", id, 350000); err != nil {
		t.Fatalf("AddGoalProgress() error = %v", err)
	}

	goals, err := repo.ActiveGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveGoals() error = %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("len(goals) = %d, want 1", len(goals))
	}
	if goals[0].CurrentAmount.Cents != 350000 {
		t.Errorf("CurrentAmount = %d, want 350000", goals[0].CurrentAmount.Cents)
	}
	if goals[0].Acknowledged {
		t.Error("new goal already acknowledged")
	}

	if err := repo.MarkGoalAcknowledged(ctx, "u1", id); err != nil {
		t.Fatalf("MarkGoalAcknowledged() error = %v", err)
	}
	goals, err = repo.ActiveGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveGoals() error = %v", err)
	}
	if !goals[0].Acknowledged {
		t.Error("Acknowledged = false after MarkGoalAcknowledged")
	}
}

func TestMonthlyGoalsScopedToPeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateGoal(ctx, core.Goal{
		UserID:       "u1",
		Name:         "Groceries cap",
		Type:         core.TypeExpense,
		TargetAmount: core.Money{Cents: 100000},
		Monthly:      true,
		Month:        3,
		Year:         2025,
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	march, err := repo.MonthlyGoals(ctx, "u1", 3, 2025)
	if err != nil {
		t.Fatalf("MonthlyGoals() error = %v", err)
	}
	if len(march) != 1 {
		t.Errorf("len(march) = %d, want 1", len(march))
	}

	april, err := repo.MonthlyGoals(ctx, "u1", 4, 2025)
	if err != nil {
		t.Fatalf("MonthlyGoals() error = %v", err)
	}
	if len(april) != 0 {
		t.Errorf("len(april) = %d, want 0", len(april))
	}
}
