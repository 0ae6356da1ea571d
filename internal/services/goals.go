package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"julius/internal/core"
)

// GoalTier grades a monthly expense goal's consumption.
type GoalTier string

const (
	GoalOK       GoalTier = "ok"
	GoalWarning  GoalTier = "warning"
	GoalExceeded GoalTier = "exceeded"
)

// GoalEvaluation is the derived progress for one goal. Tier is only set for
// monthly expense goals; income goals carry a Completed signal instead.
type GoalEvaluation struct {
	Goal       core.Goal
	Percentage int
	Tier       GoalTier
	Completed  bool
}

// Progress converts a goal's amounts into a bounded percentage: zero when
// the target is unset, otherwise current/target rounded and clamped to
// [0, 100]. The current amount can sit below zero after withdrawals, so the
// lower bound matters as much as the cap.
func Progress(current, target core.Money) int {
	if target.Cents <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current.Cents) / float64(target.Cents) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Evaluate derives progress, tier and completion for one goal.
//
// Expense goals warn at 85% and flip to exceeded at 100%. Income goals have
// no warning tier; they complete once the target is reached, and a goal the
// user already acknowledged never re-triggers its completion signal.
func Evaluate(g core.Goal) GoalEvaluation {
	eval := GoalEvaluation{
		Goal:       g,
		Percentage: Progress(g.CurrentAmount, g.TargetAmount),
	}

	if g.Monthly && g.Type == core.TypeExpense {
		switch {
		case eval.Percentage >= 100:
			eval.Tier = GoalExceeded
		case eval.Percentage >= 85:
			eval.Tier = GoalWarning
		default:
			eval.Tier = GoalOK
		}
	}

	if g.Type == core.TypeIncome && !g.Acknowledged && g.TargetAmount.Cents > 0 {
		eval.Completed = float64(g.CurrentAmount.Cents)/float64(g.TargetAmount.Cents)*100 >= 100
	}

	return eval
}

// GoalService evaluates goals and routes acknowledgements.
type GoalService struct {
	goals GoalReader
	acks  AckPublisher
}

func NewGoalService(goals GoalReader, acks AckPublisher) *GoalService {
	return &GoalService{goals: goals, acks: acks}
}

// Evaluations returns the progress of every active goal plus the monthly
// goals of the given period.
func (s *GoalService) Evaluations(ctx context.Context, userID string, month, year int) ([]GoalEvaluation, error) {
	active, err := s.goals.ActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch active goals: %w", err)
	}
	monthly, err := s.goals.MonthlyGoals(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("fetch monthly goals: %w", err)
	}

	evals := make([]GoalEvaluation, 0, len(active)+len(monthly))
	for _, g := range active {
		evals = append(evals, Evaluate(g))
	}
	for _, g := range monthly {
		evals = append(evals, Evaluate(g))
	}
	return evals, nil
}

// Acknowledge records that the user saw a goal's completion. The write is
// carried over AMQP and applied by the worker; a publish failure is logged
// and swallowed so the celebratory screen never blocks on it.
func (s *GoalService) Acknowledge(ctx context.Context, userID, goalID string) {
	if s.acks == nil {
		slog.WarnContext(ctx, "No ack publisher configured, goal acknowledgement dropped",
			"user_id", userID, "goal_id", goalID)
		return
	}
	if err := s.acks.PublishGoalAck(ctx, userID, goalID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal acknowledgement",
			"user_id", userID, "goal_id", goalID, "error", err)
	}
}
