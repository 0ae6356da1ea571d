package services

import (
	"context"
	"math"
	"testing"

	"julius/internal/core"
	"julius/internal/period"
)

func monthTx(txType core.TransactionType, status core.TransactionStatus, month, year int, cents int64, categoryID, categoryName string) core.Transaction {
	return core.Transaction{
		Amount:       core.Money{Cents: cents},
		Type:         txType,
		Status:       status,
		Month:        month,
		Year:         year,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
}

func (f *fakeStore) addMonthTx(tx core.Transaction) {
	if f.byMonth == nil {
		f.byMonth = map[string][]core.Transaction{}
	}
	key := core.BillKey{Month: tx.Month, Year: tx.Year}.String()
	f.byMonth[key] = append(f.byMonth[key], tx)
}

func TestMonthSummaryTotals(t *testing.T) {
	store := &fakeStore{}
	store.addMonthTx(monthTx(core.TypeIncome, core.StatusCompleted, 3, 2025, 300000, "cat-salary", "Salary"))
	store.addMonthTx(monthTx(core.TypeIncome, core.StatusCompleted, 3, 2025, 200000, "cat-extra", "Freelance"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 250000, "cat-rent", "Rent"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 150000, "cat-food", "Food"))
	// Pending transactions never count toward completed totals.
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusPending, 3, 2025, 99999, "cat-food", "Food"))

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	if got.TotalIncomes.Cents != 500000 {
		t.Errorf("TotalIncomes = %d, want 500000", got.TotalIncomes.Cents)
	}
	if got.TotalExpenses.Cents != 400000 {
		t.Errorf("TotalExpenses = %d, want 400000", got.TotalExpenses.Cents)
	}
	if got.Balance.Cents != 100000 {
		t.Errorf("Balance = %d, want 100000", got.Balance.Cents)
	}
}

func TestMonthSummaryExcludesPendingBillTransactions(t *testing.T) {
	store := &fakeStore{
		pending: map[core.BillKey]struct{}{
			{CardID: "c1", Month: 3, Year: 2025}: {},
		},
	}
	excluded := monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 10000, "cat-shop", "Shopping")
	excluded.CreditCardID = "c1"
	store.addMonthTx(excluded)

	settled := monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 5000, "cat-shop", "Shopping")
	settled.CreditCardID = "c2"
	store.addMonthTx(settled)

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	if got.TotalExpenses.Cents != 5000 {
		t.Errorf("TotalExpenses = %d, want 5000 (pending-bill transaction must be excluded)", got.TotalExpenses.Cents)
	}
}

func TestMonthSummaryCategoryBreakdown(t *testing.T) {
	store := &fakeStore{}
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 30000, "cat-rent", "Rent"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 10000, "cat-food", "Food"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 10000, "cat-food", "Food"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 10000, "cat-fun", "Leisure"))
	// Uncategorized completed expense stays out of the breakdown.
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 7777, "", ""))

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	cats := got.ExpensesByCategory
	if len(cats) != 3 {
		t.Fatalf("len(ExpensesByCategory) = %d, want 3", len(cats))
	}

	// Descending by total, name ascending on ties.
	if cats[0].CategoryID != "cat-rent" {
		t.Errorf("cats[0] = %s, want cat-rent", cats[0].CategoryID)
	}
	if cats[1].CategoryID != "cat-food" || cats[1].Count != 2 {
		t.Errorf("cats[1] = %+v, want cat-food with count 2", cats[1])
	}

	var pctSum float64
	for _, c := range cats {
		pctSum += c.Percentage
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Errorf("category percentages sum = %v, want 100", pctSum)
	}
	if math.Abs(cats[0].Percentage-50) > 1e-9 {
		t.Errorf("cats[0].Percentage = %v, want 50", cats[0].Percentage)
	}
}

func TestMonthSummaryEmptyMonth(t *testing.T) {
	store := &fakeStore{}

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	if got.TotalIncomes.Cents != 0 || got.TotalExpenses.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("summary = %+v, want zero totals", got)
	}
	if len(got.ExpensesByCategory) != 0 || len(got.IncomesByCategory) != 0 {
		t.Error("breakdowns not empty for empty month")
	}
}

func TestMonthSummaryPreviousMonthComparison(t *testing.T) {
	store := &fakeStore{
		pending: map[core.BillKey]struct{}{
			{CardID: "c1", Month: 2, Year: 2025}: {},
		},
	}
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 40000, "cat-food", "Food"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 2, 2025, 30000, "cat-food", "Food"))
	// Previous-period card spend on a pending bill is excluded there too.
	prevCard := monthTx(core.TypeExpense, core.StatusCompleted, 2, 2025, 12345, "cat-shop", "Shopping")
	prevCard.CreditCardID = "c1"
	store.addMonthTx(prevCard)

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	if got.PreviousMonthExpenses.Cents != 30000 {
		t.Errorf("PreviousMonthExpenses = %d, want 30000", got.PreviousMonthExpenses.Cents)
	}
}

func TestMonthSummaryDegradesOnFetchFailure(t *testing.T) {
	store := &fakeStore{failAll: true}

	svc := NewSummaryService(store, store)
	got, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v, want degraded zero summary", err)
	}
	if got.TotalExpenses.Cents != 0 || got.TotalIncomes.Cents != 0 {
		t.Errorf("summary = %+v, want zeros", got)
	}
}

// The two call sites of the consistency contract must agree bit for bit:
// calling the aggregator twice over one snapshot yields identical numbers.
func TestMonthSummaryDeterministic(t *testing.T) {
	store := &fakeStore{}
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 12000, "cat-a", "A"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 12000, "cat-b", "B"))
	store.addMonthTx(monthTx(core.TypeExpense, core.StatusCompleted, 3, 2025, 6000, "cat-c", "C"))

	svc := NewSummaryService(store, store)
	first, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}
	second, err := svc.MonthSummary(context.Background(), "u1", period.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	if len(first.ExpensesByCategory) != len(second.ExpensesByCategory) {
		t.Fatal("breakdown lengths differ across passes")
	}
	for i := range first.ExpensesByCategory {
		if first.ExpensesByCategory[i] != second.ExpensesByCategory[i] {
			t.Errorf("breakdown[%d] differs: %+v vs %+v", i, first.ExpensesByCategory[i], second.ExpensesByCategory[i])
		}
	}
}
