package services

import (
	"fmt"
	"time"

	"julius/internal/core"
	"julius/internal/period"
)

// AlertKind tags the banner chosen for the summary screen.
type AlertKind string

const (
	AlertBillOverdue   AlertKind = "bill-overdue"
	AlertBillDueToday  AlertKind = "bill-due-today"
	AlertUsageHigh     AlertKind = "usage-high"
	AlertGoalExceeded  AlertKind = "goal-exceeded"
	AlertFutureBills   AlertKind = "future-bills"
)

// Alert is one selected notification.
type Alert struct {
	Kind    AlertKind
	Message string
}

// AlertInput is everything the rule chain may inspect. Dismissed kinds are
// passed in explicitly; the chain reads no ambient device state.
type AlertInput struct {
	Now       time.Time
	Overview  *BillOverview
	Usage     UsageTier
	Goals     []GoalEvaluation
	Dismissed map[AlertKind]struct{}
}

// alertRule pairs a predicate with its payload. Rules are evaluated in
// priority order and the first applicable one wins.
type alertRule struct {
	kind  AlertKind
	apply func(AlertInput) (Alert, bool)
}

var alertRules = []alertRule{
	{kind: AlertBillOverdue, apply: overdueBillAlert},
	{kind: AlertBillDueToday, apply: dueTodayBillAlert},
	{kind: AlertUsageHigh, apply: usageAlert},
	{kind: AlertGoalExceeded, apply: goalExceededAlert},
	{kind: AlertFutureBills, apply: futureBillsAlert},
}

// SelectAlert walks the rule chain and returns the highest-priority alert
// the user has not dismissed. ok is false when nothing applies.
func SelectAlert(in AlertInput) (Alert, bool) {
	for _, rule := range alertRules {
		if _, dismissed := in.Dismissed[rule.kind]; dismissed {
			continue
		}
		if alert, ok := rule.apply(in); ok {
			return alert, true
		}
	}
	return Alert{}, false
}

func overdueBillAlert(in AlertInput) (Alert, bool) {
	if in.Overview == nil {
		return Alert{}, false
	}
	for _, bill := range in.Overview.OpenBills {
		if bill.IsFutureBill {
			continue
		}
		if bill.DueDate.Before(in.Now) && !period.SameCalendarDay(bill.DueDate, in.Now) {
			return Alert{
				Kind:    AlertBillOverdue,
				Message: fmt.Sprintf("You have an overdue bill of %s.", core.FormatBRL(bill.Amount.Cents)),
			}, true
		}
	}
	return Alert{}, false
}

func dueTodayBillAlert(in AlertInput) (Alert, bool) {
	if in.Overview == nil {
		return Alert{}, false
	}
	for _, bill := range in.Overview.OpenBills {
		if bill.IsFutureBill {
			continue
		}
		if period.SameCalendarDay(bill.DueDate, in.Now) {
			return Alert{
				Kind:    AlertBillDueToday,
				Message: fmt.Sprintf("A bill of %s is due today.", core.FormatBRL(bill.Amount.Cents)),
			}, true
		}
	}
	return Alert{}, false
}

func usageAlert(in AlertInput) (Alert, bool) {
	if in.Usage.Level != UsageAlert {
		return Alert{}, false
	}
	return Alert{Kind: AlertUsageHigh, Message: in.Usage.Message}, true
}

func goalExceededAlert(in AlertInput) (Alert, bool) {
	for _, eval := range in.Goals {
		if eval.Tier == GoalExceeded {
			return Alert{
				Kind:    AlertGoalExceeded,
				Message: fmt.Sprintf("Goal %q went over its limit.", eval.Goal.Name),
			}, true
		}
	}
	return Alert{}, false
}

func futureBillsAlert(in AlertInput) (Alert, bool) {
	if in.Overview == nil || !in.Overview.CanShowFutureBillsSection() {
		return Alert{}, false
	}
	return Alert{
		Kind:    AlertFutureBills,
		Message: "All caught up! You can already see next month's bills.",
	}, true
}
