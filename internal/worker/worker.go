// Package worker applies queued work: goal acknowledgements and month
// summary exports.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"julius/internal/amqp"
	"julius/internal/period"
	"julius/internal/services"
	"julius/internal/sheets"
	"julius/internal/storage"
)

type Worker struct {
	storage   *storage.SQLiteRepository
	summaries *services.SummaryService
	writer    sheets.SummaryWriter
}

// New builds a worker. writer may be nil when no spreadsheet is configured;
// export requests are then logged and dropped.
func New(repo *storage.SQLiteRepository, summaries *services.SummaryService, writer sheets.SummaryWriter) *Worker {
	return &Worker{storage: repo, summaries: summaries, writer: writer}
}

// HandleEnvelope dispatches one queue message. Returning an error requeues
// the delivery, so permanent failures are logged and swallowed instead.
func (w *Worker) HandleEnvelope(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindGoalAck:
		return w.handleGoalAck(ctx, env)
	case amqp.KindSummaryExport:
		return w.handleSummaryExport(ctx, env)
	default:
		// Unknown kinds would requeue forever; drop them.
		slog.WarnContext(ctx, "Dropping message of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (w *Worker) handleGoalAck(ctx context.Context, env *amqp.Envelope) error {
	msg, err := env.GoalAck()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed goal ack", "error", err)
		return nil
	}

	err = w.storage.MarkGoalAcknowledged(ctx, msg.UserID, msg.GoalID)
	if errors.Is(err, sql.ErrNoRows) {
		// The goal was deleted between publish and delivery.
		slog.WarnContext(ctx, "Goal ack for unknown goal dropped",
			"user_id", msg.UserID, "goal_id", msg.GoalID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark goal acknowledged: %w", err)
	}
	return nil
}

func (w *Worker) handleSummaryExport(ctx context.Context, env *amqp.Envelope) error {
	msg, err := env.SummaryExport()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed summary export request", "error", err)
		return nil
	}
	if w.writer == nil {
		slog.WarnContext(ctx, "No summary writer configured, dropping export request",
			"user_id", msg.UserID, "month", msg.Month, "year", msg.Year)
		return nil
	}
	return w.ExportMonthSummary(ctx, msg.UserID, period.Period{Month: msg.Month, Year: msg.Year})
}

// ExportMonthSummary recomputes one user's month through the canonical
// aggregator and writes it out, so the sheet can never disagree with the
// app's own screens.
func (w *Worker) ExportMonthSummary(ctx context.Context, userID string, p period.Period) error {
	summary, err := w.summaries.MonthSummary(ctx, userID, p)
	if err != nil {
		return fmt.Errorf("aggregate month summary: %w", err)
	}

	if err := w.writer.WriteMonthSummary(ctx, userID, summary); err != nil {
		return fmt.Errorf("write month summary: %w", err)
	}
	return nil
}

// ExportAllCurrentMonth exports the current period for every user with
// recorded transactions. Per-user failures are logged and skipped so one
// bad export does not block the rest of the batch.
func (w *Worker) ExportAllCurrentMonth(ctx context.Context, now time.Time) error {
	if w.writer == nil {
		return nil
	}
	users, err := w.storage.ActiveUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	p := period.Current(now)
	for _, userID := range users {
		if err := w.ExportMonthSummary(ctx, userID, p); err != nil {
			slog.ErrorContext(ctx, "Periodic summary export failed",
				"error", err, "user_id", userID, "month", p.Month, "year", p.Year)
		}
	}
	return nil
}
