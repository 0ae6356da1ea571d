package services

import (
	"context"
	"testing"

	"julius/internal/core"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		target  int64
		want    int
	}{
		{name: "zero target", current: 5000, target: 0, want: 0},
		{name: "negative target", current: 5000, target: -100, want: 0},
		{name: "thirty five percent", current: 350000, target: 1000000, want: 35},
		{name: "rounds half up", current: 355, target: 1000, want: 36},
		{name: "rounds down", current: 354, target: 1000, want: 35},
		{name: "capped at 100", current: 250000, target: 100000, want: 100},
		{name: "exactly complete", current: 100000, target: 100000, want: 100},
		{name: "zero current", current: 0, target: 100000, want: 0},
		{name: "negative current floors at zero", current: -5000, target: 10000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(core.Money{Cents: tt.current}, core.Money{Cents: tt.target})
			if got != tt.want {
				t.Errorf("Progress(%d, %d) = %d, want %d", tt.current, tt.target, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("Progress out of bounds: %d", got)
			}
		})
	}
}

func TestEvaluateMonthlyExpenseTiers(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		want    GoalTier
	}{
		{name: "comfortable", current: 50000, want: GoalOK},
		{name: "just under warning", current: 84000, want: GoalOK},
		{name: "at warning threshold", current: 85000, want: GoalWarning},
		{name: "near limit", current: 99000, want: GoalWarning},
		{name: "at limit", current: 100000, want: GoalExceeded},
		{name: "over limit", current: 130000, want: GoalExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := core.Goal{
				Type:          core.TypeExpense,
				Monthly:       true,
				CurrentAmount: core.Money{Cents: tt.current},
				TargetAmount:  core.Money{Cents: 100000},
			}
			eval := Evaluate(g)
			if eval.Tier != tt.want {
				t.Errorf("Evaluate().Tier = %s, want %s", eval.Tier, tt.want)
			}
		})
	}
}

func TestEvaluateIncomeGoalHasNoTier(t *testing.T) {
	g := core.Goal{
		Type:          core.TypeIncome,
		Monthly:       true,
		CurrentAmount: core.Money{Cents: 120000},
		TargetAmount:  core.Money{Cents: 100000},
	}
	eval := Evaluate(g)
	if eval.Tier != "" {
		t.Errorf("income goal Tier = %s, want empty", eval.Tier)
	}
	if !eval.Completed {
		t.Error("Completed = false for income goal past its target, want true")
	}
}

func TestEvaluateAcknowledgedGoalNeverRetriggers(t *testing.T) {
	g := core.Goal{
		Type:          core.TypeIncome,
		CurrentAmount: core.Money{Cents: 120000},
		TargetAmount:  core.Money{Cents: 100000},
		Acknowledged:  true,
	}
	if eval := Evaluate(g); eval.Completed {
		t.Error("Completed = true for acknowledged goal, want false")
	}
}

type fakeGoalStore struct {
	active  []core.Goal
	monthly []core.Goal
}

func (f *fakeGoalStore) ActiveGoals(context.Context, string) ([]core.Goal, error) {
	return f.active, nil
}

func (f *fakeGoalStore) MonthlyGoals(context.Context, string, int, int) ([]core.Goal, error) {
	return f.monthly, nil
}

type fakeAckPublisher struct {
	published []string
}

func (f *fakeAckPublisher) PublishGoalAck(_ context.Context, _, goalID string) error {
	f.published = append(f.published, goalID)
	return nil
}

func TestGoalServiceEvaluations(t *testing.T) {
	store := &fakeGoalStore{
		active: []core.Goal{
			{ID: "g1", Name: "Trip", Type: core.TypeIncome, CurrentAmount: core.Money{Cents: 350000}, TargetAmount: core.Money{Cents: 1000000}},
		},
		monthly: []core.Goal{
			{ID: "g2", Name: "Groceries", Type: core.TypeExpense, Monthly: true, CurrentAmount: core.Money{Cents: 90000}, TargetAmount: core.Money{Cents: 100000}},
		},
	}

	svc := NewGoalService(store, nil)
	evals, err := svc.Evaluations(context.Background(), "u1", 3, 2025)
	if err != nil {
		t.Fatalf("Evaluations() error = %v", err)
	}
	if len(evals) != 2 {
		t.Fatalf("len(evals) = %d, want 2", len(evals))
	}
	if evals[0].Percentage != 35 {
		t.Errorf("trip goal progress = %d, want 35", evals[0].Percentage)
	}
	if evals[1].Tier != GoalWarning {
		t.Errorf("groceries tier = %s, want warning", evals[1].Tier)
	}
}

func TestGoalServiceAcknowledge(t *testing.T) {
	pub := &fakeAckPublisher{}
	svc := NewGoalService(&fakeGoalStore{}, pub)

	svc.Acknowledge(context.Background(), "u1", "g1")
	if len(pub.published) != 1 || pub.published[0] != "g1" {
		t.Errorf("published = %v, want [g1]", pub.published)
	}

	// Nil publisher drops silently instead of panicking.
	NewGoalService(&fakeGoalStore{}, nil).Acknowledge(context.Background(), "u1", "g1")
}
