// Package services implements the bill-cycle reconciliation and consistent
// financial aggregation core.
//
// Every computation here is a pure fold over one snapshot read: services
// fetch, derive, and discard. Nothing is cached between passes, so a result
// always reflects the latest read.
package services

import (
	"context"

	"julius/internal/core"
)

// Ports to the backing store. Implementations live in internal/storage.
type (
	TransactionReader interface {
		// TransactionsByMonth returns every transaction billed to the
		// given period, cards included.
		TransactionsByMonth(ctx context.Context, userID string, month, year int) ([]core.Transaction, error)

		// TransactionsByCardAndMonth returns the transactions billed to
		// one card's statement for the given period.
		TransactionsByCardAndMonth(ctx context.Context, userID, cardID string, month, year int) ([]core.Transaction, error)
	}

	BillStatusReader interface {
		// BillPayments returns the recorded paid/unpaid flags keyed by
		// bill. A bill with no record is unpaid.
		BillPayments(ctx context.Context, userID string) (map[core.BillKey]bool, error)

		// PendingBillKeys returns the keys of every bill that has
		// transactions but is not marked paid.
		PendingBillKeys(ctx context.Context, userID string) (map[core.BillKey]struct{}, error)
	}

	CardReader interface {
		CreditCards(ctx context.Context, userID string) ([]core.CreditCard, error)
	}

	GoalReader interface {
		ActiveGoals(ctx context.Context, userID string) ([]core.Goal, error)
		MonthlyGoals(ctx context.Context, userID string, month, year int) ([]core.Goal, error)
	}

	// AckPublisher carries a goal acknowledgement out of the request path.
	// Persistence happens asynchronously; failures are logged, not returned
	// to the caller.
	AckPublisher interface {
		PublishGoalAck(ctx context.Context, userID, goalID string) error
	}

	// ExportPublisher queues a month summary export. The worker recomputes
	// the summary when it processes the request.
	ExportPublisher interface {
		PublishSummaryExport(ctx context.Context, userID string, month, year int) error
	}
)
