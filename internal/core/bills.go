package core

import (
	"strings"
	"time"
)

// BillStatus is the resolved state of one card's bill for a single period.
type BillStatus struct {
	Total   Money
	IsPaid  bool
	DueDate time.Time
}

// OpenBillSummary is the single unpaid bill surfaced for a card. It is
// recomputed on every pass and never persisted; a fully paid or zero-total
// bill is never represented here.
type OpenBillSummary struct {
	Amount       Money
	BillMonth    int
	BillYear     int
	DueDate      time.Time
	IsFutureBill bool
}

// Goal is a savings or spending target. Monthly goals are scoped to one
// period; active goals accumulate until their target is reached.
type Goal struct {
	ID            string
	UserID        string
	Name          string
	Type          TransactionType // expense goals cap spending, income goals track earnings
	TargetAmount  Money
	CurrentAmount Money
	Monthly       bool
	Month         int // set for monthly goals
	Year          int
	Acknowledged  bool // completion already shown to the user once
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if !g.Type.Valid() {
		return ErrInvalidType
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.Monthly {
		if g.Month < 1 || g.Month > 12 {
			return ErrInvalidMonth
		}
		if g.Year < 1970 || g.Year > 9999 {
			return ErrInvalidYear
		}
	}
	return nil
}
