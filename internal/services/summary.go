package services

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"julius/internal/core"
	"julius/internal/period"
)

// SummaryService produces the canonical monthly totals. The home screen,
// the assistant insights and the sheet export all call MonthSummary, so no
// two surfaces can ever show a different number for the same (user, month).
type SummaryService struct {
	txs      TransactionReader
	statuses BillStatusReader
}

func NewSummaryService(txs TransactionReader, statuses BillStatusReader) *SummaryService {
	return &SummaryService{txs: txs, statuses: statuses}
}

// MonthSummary aggregates one period's transactions into totals and
// per-category breakdowns, with the prior period's expense total for
// comparison.
//
// Transactions that belong to a still-pending card bill are excluded
// everywhere: money on an unsettled statement has not left the user's cash
// flow yet, and counting it would double-book the eventual bill payment.
//
// Each of the three underlying fetches degrades to empty on failure; the
// worst case is a zeroed summary, never an error page.
func (s *SummaryService) MonthSummary(ctx context.Context, userID string, p period.Period) (core.HomeSummary, error) {
	prev := p.Previous()

	var (
		current []core.Transaction
		before  []core.Transaction
		pending map[core.BillKey]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		current = s.fetchMonth(gctx, userID, p)
		return nil
	})
	g.Go(func() error {
		before = s.fetchMonth(gctx, userID, prev)
		return nil
	})
	g.Go(func() error {
		var err error
		pending, err = s.statuses.PendingBillKeys(gctx, userID)
		if err != nil {
			slog.ErrorContext(gctx, "Failed to fetch pending bill keys, applying no exclusion",
				"user_id", userID, "error", err)
			pending = map[core.BillKey]struct{}{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.HomeSummary{}, err
	}

	current = excludePendingBills(current, pending)
	before = excludePendingBills(before, pending)

	summary := core.HomeSummary{Year: p.Year, Month: p.Month}

	for _, tx := range current {
		if tx.Status != core.StatusCompleted {
			continue
		}
		switch tx.Type {
		case core.TypeIncome:
			summary.TotalIncomes.Cents += tx.Amount.Cents
		case core.TypeExpense:
			summary.TotalExpenses.Cents += tx.Amount.Cents
		}
	}
	summary.Balance.Cents = summary.TotalIncomes.Cents - summary.TotalExpenses.Cents

	summary.ExpensesByCategory = categoryBreakdown(current, core.TypeExpense)
	summary.IncomesByCategory = categoryBreakdown(current, core.TypeIncome)

	for _, tx := range before {
		if tx.Status == core.StatusCompleted && tx.Type == core.TypeExpense {
			summary.PreviousMonthExpenses.Cents += tx.Amount.Cents
		}
	}

	return summary, nil
}

func (s *SummaryService) fetchMonth(ctx context.Context, userID string, p period.Period) []core.Transaction {
	txs, err := s.txs.TransactionsByMonth(ctx, userID, p.Month, p.Year)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch month transactions, degrading to empty",
			"user_id", userID, "month", p.Month, "year", p.Year, "error", err)
		return nil
	}
	return txs
}

// excludePendingBills drops every transaction whose (card, month, year)
// matches a pending bill key.
func excludePendingBills(txs []core.Transaction, pending map[core.BillKey]struct{}) []core.Transaction {
	if len(pending) == 0 {
		return txs
	}
	kept := txs[:0:0]
	for _, tx := range txs {
		if key, ok := tx.Key(); ok {
			if _, isPending := pending[key]; isPending {
				continue
			}
		}
		kept = append(kept, tx)
	}
	return kept
}

// categoryBreakdown groups completed, categorized transactions of one type.
// Percentages are relative to the filtered total of that type and sum to
// 100 whenever the total is positive. Sorted by total descending, name
// ascending on ties so the order is stable across passes.
func categoryBreakdown(txs []core.Transaction, txType core.TransactionType) []core.CategoryTotal {
	byCategory := make(map[string]*core.CategoryTotal)
	var typeTotal int64

	for _, tx := range txs {
		if tx.Status != core.StatusCompleted || tx.Type != txType || tx.CategoryID == "" {
			continue
		}
		entry, ok := byCategory[tx.CategoryID]
		if !ok {
			entry = &core.CategoryTotal{
				CategoryID:   tx.CategoryID,
				CategoryName: tx.CategoryName,
				CategoryIcon: tx.CategoryIcon,
			}
			byCategory[tx.CategoryID] = entry
		}
		entry.Total.Cents += tx.Amount.Cents
		entry.Count++
		typeTotal += tx.Amount.Cents
	}

	totals := make([]core.CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		if typeTotal > 0 {
			entry.Percentage = float64(entry.Total.Cents) / float64(typeTotal) * 100
		}
		totals = append(totals, *entry)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Cents != totals[j].Total.Cents {
			return totals[i].Total.Cents > totals[j].Total.Cents
		}
		return totals[i].CategoryName < totals[j].CategoryName
	})

	return totals
}
