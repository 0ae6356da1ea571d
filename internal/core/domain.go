package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"

	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
)

type (
	TransactionType string

	TransactionStatus string

	Money struct {
		Cents int64
	}

	// Transaction is a single movement tied to a billing period. Month and
	// Year identify the period the transaction bills against, which for
	// credit-card purchases is not necessarily the calendar date it was made.
	Transaction struct {
		ID           string
		UserID       string
		Description  string
		Amount       Money
		Type         TransactionType
		Status       TransactionStatus
		Month        int // 1-12, billing period
		Year         int
		CategoryID   string
		CategoryName string
		CategoryIcon string
		CreditCardID string // empty for cash/account transactions
	}

	CreditCard struct {
		ID     string
		UserID string
		Name   string
		DueDay int // 1-31, clamped to the month's last day when computing due dates
		Color  string
		Icon   string
	}

	// BillKey identifies one credit-card bill: a card plus the billing period.
	BillKey struct {
		CardID string
		Month  int
		Year   int
	}
)

var (
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidStatus    = errors.New("invalid transaction status")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptyCardName    = errors.New("empty card name")
	ErrEmptyGoalName    = errors.New("empty goal name")
	ErrInvalidDueDay    = errors.New("invalid due day")
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Month < 1 || t.Month > 12 {
		return ErrInvalidMonth
	}
	if t.Year < 1970 || t.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCardName
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Key returns the BillKey for a card transaction, or false when the
// transaction is not tied to a credit card.
func (t Transaction) Key() (BillKey, bool) {
	if t.CreditCardID == "" {
		return BillKey{}, false
	}
	return BillKey{CardID: t.CreditCardID, Month: t.Month, Year: t.Year}, true
}

// String renders the key in the canonical "cardID-month-year" form used as
// the join key between bill statuses and transaction aggregation.
func (k BillKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.CardID, k.Month, k.Year)
}
