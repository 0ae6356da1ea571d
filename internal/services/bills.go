package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"julius/internal/core"
	"julius/internal/period"
)

// maxConcurrentCardFetches bounds the reconciliation fan-out so a user with
// many cards does not flood the store with parallel queries.
const maxConcurrentCardFetches = 8

// BillOverview is the result of one reconciliation pass over all cards.
type BillOverview struct {
	// OpenBills maps card ID to the single open bill selected for that
	// card. At most one open bill exists per card per pass.
	OpenBills map[string]core.OpenBillSummary

	// HasFutureBills is true when any card has an unpaid next-period bill
	// with a positive total, whether or not that bill was selected as the
	// card's open bill.
	HasFutureBills bool

	// AllCurrentBillsPaid is true when every card with current-period
	// spend has its bill paid. Cards with no current-period spend do not
	// block it.
	AllCurrentBillsPaid bool
}

// CanShowFutureBillsSection reports whether upcoming bills may be surfaced.
// Future bills stay hidden while any current-period bill is unresolved.
func (o *BillOverview) CanShowFutureBillsSection() bool {
	return o.HasFutureBills && o.AllCurrentBillsPaid
}

// BillTotal sums the amounts of the given transactions. The caller filters
// to the right card and period beforehand; an empty slice totals zero. The
// sum does not depend on input order.
func BillTotal(txs []core.Transaction) core.Money {
	var cents int64
	for _, tx := range txs {
		cents += tx.Amount.Cents
	}
	return core.Money{Cents: cents}
}

// ResolveBillStatus folds one card's pre-filtered period transactions and
// the recorded payment flags into a bill status. A bill with no payment
// record is unpaid: a missing row must never silently mark debt as settled.
func ResolveBillStatus(card core.CreditCard, p period.Period, txs []core.Transaction, paid map[core.BillKey]bool) core.BillStatus {
	key := core.BillKey{CardID: card.ID, Month: p.Month, Year: p.Year}
	return core.BillStatus{
		Total:   BillTotal(txs),
		IsPaid:  paid[key],
		DueDate: period.DueDate(p.Year, p.Month, card.DueDay),
	}
}

// BillService reconciles card bills across the current and next period.
type BillService struct {
	txs      TransactionReader
	statuses BillStatusReader
	cards    CardReader
}

func NewBillService(txs TransactionReader, statuses BillStatusReader, cards CardReader) *BillService {
	return &BillService{txs: txs, statuses: statuses, cards: cards}
}

// cardPeriods holds the two resolved statuses for one card. Each slot is
// written by exactly one fetch goroutine.
type cardPeriods struct {
	current core.BillStatus
	next    core.BillStatus
}

// Reconcile computes, for every card, the current- and next-period bill
// states and selects the single open bill per card. Current-period debt
// takes priority over next-period debt.
//
// A failed fetch degrades that card-period to a zero total and is logged;
// one broken card never blanks the whole overview.
func (s *BillService) Reconcile(ctx context.Context, userID string, now time.Time) (*BillOverview, error) {
	cards, err := s.cards.CreditCards(ctx, userID)
	if err != nil {
		return nil, err
	}

	paid, err := s.statuses.BillPayments(ctx, userID)
	if err != nil {
		// Unpaid is the fail-safe default, so an empty map only ever
		// errs toward showing debt that was already settled.
		slog.ErrorContext(ctx, "Failed to load bill payments, treating all bills as unpaid",
			"user_id", userID, "error", err)
		paid = map[core.BillKey]bool{}
	}

	cur := period.Current(now)
	next := cur.Next()

	results := make([]cardPeriods, len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCardFetches)

	for i, card := range cards {
		i, card := i, card
		g.Go(func() error {
			results[i].current = s.resolvePeriod(gctx, userID, card, cur, paid)
			return gctx.Err()
		})
		g.Go(func() error {
			results[i].next = s.resolvePeriod(gctx, userID, card, next, paid)
			return gctx.Err()
		})
	}
	// Tasks fold fetch failures into zero statuses; the only error that
	// reaches Wait is cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &BillOverview{
		OpenBills:           make(map[string]core.OpenBillSummary),
		AllCurrentBillsPaid: true,
	}

	for i, card := range cards {
		st := results[i]

		switch {
		case st.current.Total.Cents > 0 && !st.current.IsPaid:
			overview.OpenBills[card.ID] = core.OpenBillSummary{
				Amount:    st.current.Total,
				BillMonth: cur.Month,
				BillYear:  cur.Year,
				DueDate:   st.current.DueDate,
			}
		case st.next.Total.Cents > 0 && !st.next.IsPaid:
			overview.OpenBills[card.ID] = core.OpenBillSummary{
				Amount:       st.next.Total,
				BillMonth:    next.Month,
				BillYear:     next.Year,
				DueDate:      st.next.DueDate,
				IsFutureBill: true,
			}
		}

		// Computed independently of the open-bill selection: a card can
		// contribute a future bill even while its current bill is open.
		if st.next.Total.Cents > 0 && !st.next.IsPaid {
			overview.HasFutureBills = true
		}
		if st.current.Total.Cents > 0 && !st.current.IsPaid {
			overview.AllCurrentBillsPaid = false
		}
	}

	return overview, nil
}

// resolvePeriod fetches and resolves one card-period, degrading to a zero
// status when the fetch fails.
func (s *BillService) resolvePeriod(ctx context.Context, userID string, card core.CreditCard, p period.Period, paid map[core.BillKey]bool) core.BillStatus {
	txs, err := s.txs.TransactionsByCardAndMonth(ctx, userID, card.ID, p.Month, p.Year)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch card transactions, degrading to zero total",
			"user_id", userID,
			"card_id", card.ID,
			"month", p.Month,
			"year", p.Year,
			"error", err)
		txs = nil
	}
	return ResolveBillStatus(card, p, txs, paid)
}
