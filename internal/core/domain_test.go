package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		UserID:      "u1",
		Description: "groceries",
		Amount:      Money{Cents: 4550},
		Type:        TypeExpense,
		Status:      StatusCompleted,
		Month:       3,
		Year:        2025,
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{
			name:    "valid transaction",
			mutate:  func(*Transaction) {},
			wantErr: nil,
		},
		{
			name:    "missing user",
			mutate:  func(tx *Transaction) { tx.UserID = "  " },
			wantErr: ErrEmptyUserID,
		},
		{
			name:    "empty description",
			mutate:  func(tx *Transaction) { tx.Description = "" },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{Cents: -100} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "transfer" },
			wantErr: ErrInvalidType,
		},
		{
			name:    "unknown status",
			mutate:  func(tx *Transaction) { tx.Status = "scheduled" },
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "month zero",
			mutate:  func(tx *Transaction) { tx.Month = 0 },
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "month thirteen",
			mutate:  func(tx *Transaction) { tx.Month = 13 },
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreditCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    CreditCard
		wantErr error
	}{
		{
			name:    "valid card",
			card:    CreditCard{UserID: "u1", Name: "Nubank", DueDay: 10},
			wantErr: nil,
		},
		{
			name:    "empty name",
			card:    CreditCard{UserID: "u1", Name: " ", DueDay: 10},
			wantErr: ErrEmptyCardName,
		},
		{
			name:    "due day zero",
			card:    CreditCard{UserID: "u1", Name: "Visa", DueDay: 0},
			wantErr: ErrInvalidDueDay,
		},
		{
			name:    "due day past 31",
			card:    CreditCard{UserID: "u1", Name: "Visa", DueDay: 32},
			wantErr: ErrInvalidDueDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	tests := []struct {
		name    string
		goal    Goal
		wantErr error
	}{
		{
			name:    "valid active goal",
			goal:    Goal{UserID: "u1", Name: "Trip", Type: TypeIncome, TargetAmount: Money{Cents: 100000}},
			wantErr: nil,
		},
		{
			name:    "valid monthly goal",
			goal:    Goal{UserID: "u1", Name: "Groceries", Type: TypeExpense, TargetAmount: Money{Cents: 50000}, Monthly: true, Month: 3, Year: 2025},
			wantErr: nil,
		},
		{
			name:    "empty name",
			goal:    Goal{UserID: "u1", Name: " ", Type: TypeIncome, TargetAmount: Money{Cents: 100}},
			wantErr: ErrEmptyGoalName,
		},
		{
			name:    "zero target",
			goal:    Goal{UserID: "u1", Name: "Trip", Type: TypeIncome},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "invalid type",
			goal:    Goal{UserID: "u1", Name: "Trip", Type: "loan", TargetAmount: Money{Cents: 100}},
			wantErr: ErrInvalidType,
		},
		{
			name:    "monthly goal without month",
			goal:    Goal{UserID: "u1", Name: "Cap", Type: TypeExpense, TargetAmount: Money{Cents: 100}, Monthly: true, Year: 2025},
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.goal.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBillKeyString(t *testing.T) {
	k := BillKey{CardID: "c1", Month: 3, Year: 2025}
	if got := k.String(); got != "c1-3-2025" {
		t.Errorf("String() = %q, want %q", got, "c1-3-2025")
	}
}

func TestTransactionKey(t *testing.T) {
	tx := Transaction{CreditCardID: "c1", Month: 3, Year: 2025}
	key, ok := tx.Key()
	if !ok {
		t.Fatal("Key() ok = false, want true")
	}
	if key != (BillKey{CardID: "c1", Month: 3, Year: 2025}) {
		t.Errorf("Key() = %+v", key)
	}

	cash := Transaction{Month: 3, Year: 2025}
	if _, ok := cash.Key(); ok {
		t.Error("Key() ok = true for transaction without card, want false")
	}
}
