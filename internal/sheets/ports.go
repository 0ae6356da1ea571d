package sheets

import (
	"context"

	"julius/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter exports one month's canonical summary to an external
	// spreadsheet. Implementations must be safe to call repeatedly for
	// the same (user, month): a re-export appends a fresh snapshot.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, userID string, summary core.HomeSummary) error
	}
)
