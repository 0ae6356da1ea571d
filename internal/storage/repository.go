// Package storage is the SQLite system of record behind the services.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"julius/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, user_id, description, amount_cents, type, status,
       month, year, category_id, category_name, category_icon, credit_card_id`

// CreateTransaction validates and inserts a transaction, returning its
// generated ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	tx.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Description, tx.Amount.Cents, tx.Type, tx.Status,
		tx.Month, tx.Year, tx.CategoryID, tx.CategoryName, tx.CategoryIcon, tx.CreditCardID,
	)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"month", tx.Month,
		"year", tx.Year)

	return tx.ID, nil
}

// TransactionsByMonth implements services.TransactionReader.
func (r *SQLiteRepository) TransactionsByMonth(ctx context.Context, userID string, month, year int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY created_at, id`,
		userID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("query month transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// TransactionsByCardAndMonth implements services.TransactionReader.
func (r *SQLiteRepository) TransactionsByCardAndMonth(ctx context.Context, userID, cardID string, month, year int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND credit_card_id = ? AND month = ? AND year = ?
		ORDER BY created_at, id`,
		userID, cardID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("query card transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Description, &tx.Amount.Cents, &tx.Type, &tx.Status,
			&tx.Month, &tx.Year, &tx.CategoryID, &tx.CategoryName, &tx.CategoryIcon, &tx.CreditCardID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// BillPayments implements services.BillStatusReader. Bills with no row are
// simply absent from the map, which callers treat as unpaid.
func (r *SQLiteRepository) BillPayments(ctx context.Context, userID string) (map[core.BillKey]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT card_id, month, year, is_paid
		FROM bill_statuses
		WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query bill payments: %w", err)
	}
	defer rows.Close()

	paid := make(map[core.BillKey]bool)
	for rows.Next() {
		var key core.BillKey
		var isPaid bool
		if err := rows.Scan(&key.CardID, &key.Month, &key.Year, &isPaid); err != nil {
			return nil, fmt.Errorf("scan bill payment: %w", err)
		}
		paid[key] = isPaid
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill payments: %w", err)
	}
	return paid, nil
}

// PendingBillKeys implements services.BillStatusReader: every (card, month,
// year) that has statement transactions but no paid record.
func (r *SQLiteRepository) PendingBillKeys(ctx context.Context, userID string) (map[core.BillKey]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT t.credit_card_id, t.month, t.year
		FROM transactions t
		LEFT JOIN bill_statuses b
		       ON b.user_id = t.user_id
		      AND b.card_id = t.credit_card_id
		      AND b.month = t.month
		      AND b.year = t.year
		WHERE t.user_id = ?
		  AND t.credit_card_id != ''
		  AND COALESCE(b.is_paid, 0) = 0`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending bill keys: %w", err)
	}
	defer rows.Close()

	pending := make(map[core.BillKey]struct{})
	for rows.Next() {
		var key core.BillKey
		if err := rows.Scan(&key.CardID, &key.Month, &key.Year); err != nil {
			return nil, fmt.Errorf("scan pending bill key: %w", err)
		}
		pending[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending bill keys: %w", err)
	}
	return pending, nil
}

// SetBillPaid records a bill's payment flag, overwriting any earlier record.
func (r *SQLiteRepository) SetBillPaid(ctx context.Context, userID string, key core.BillKey, isPaid bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bill_statuses (user_id, card_id, month, year, is_paid)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id, month, year)
		DO UPDATE SET is_paid = excluded.is_paid, updated_at = CURRENT_TIMESTAMP`,
		userID, key.CardID, key.Month, key.Year, isPaid,
	)
	if err != nil {
		return fmt.Errorf("upsert bill status: %w", err)
	}

	slog.InfoContext(ctx, "Bill status updated",
		"user_id", userID,
		"bill_key", key.String(),
		"is_paid", isPaid)

	return nil
}

// CreditCards implements services.CardReader.
func (r *SQLiteRepository) CreditCards(ctx context.Context, userID string) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, due_day, color, icon
		FROM credit_cards
		WHERE user_id = ?
		ORDER BY name, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query credit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.DueDay, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit cards: %w", err)
	}
	return cards, nil
}

// CreateCreditCard validates and inserts a card, returning its generated ID.
func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, card core.CreditCard) (string, error) {
	if err := card.Validate(); err != nil {
		return "", fmt.Errorf("validate credit card: %w", err)
	}

	card.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, user_id, name, due_day, color, icon)
		VALUES (?, ?, ?, ?, ?, ?)`,
		card.ID, card.UserID, card.Name, card.DueDay, card.Color, card.Icon,
	)
	if err != nil {
		return "", fmt.Errorf("insert credit card: %w", err)
	}
	return card.ID, nil
}

const goalColumns = `id, user_id, name, type, target_cents, current_cents,
       monthly, month, year, acknowledged`

// ActiveGoals implements services.GoalReader.
func (r *SQLiteRepository) ActiveGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND active = 1 AND monthly = 0
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query active goals: %w", err)
	}
	defer rows.Close()

	return scanGoals(rows)
}

// MonthlyGoals implements services.GoalReader.
func (r *SQLiteRepository) MonthlyGoals(ctx context.Context, userID string, month, year int) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND active = 1 AND monthly = 1 AND month = ? AND year = ?
		ORDER BY created_at, id`,
		userID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly goals: %w", err)
	}
	defer rows.Close()

	return scanGoals(rows)
}

func scanGoals(rows *sql.Rows) ([]core.Goal, error) {
	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		err := rows.Scan(
			&g.ID, &g.UserID, &g.Name, &g.Type, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&g.Monthly, &g.Month, &g.Year, &g.Acknowledged,
		)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// ActiveUserIDs returns every user with at least one recorded transaction.
// The periodic export walks this list.
func (r *SQLiteRepository) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

// CreateGoal inserts a goal, returning its generated ID.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	g.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Type, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.Monthly, g.Month, g.Year, g.Acknowledged,
	)
	if err != nil {
		return "", fmt.Errorf("insert goal: %w", err)
	}
	return g.ID, nil
}

// AddGoalProgress moves a goal's current amount by delta cents.
func (r *SQLiteRepository) AddGoalProgress(ctx context.Context, userID, goalID string, deltaCents int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET current_cents = current_cents + ?
		WHERE id = ? AND user_id = ?`,
		deltaCents, goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkGoalAcknowledged records that the user saw a goal's completion, so the
// celebratory signal never fires again for it.
func (r *SQLiteRepository) MarkGoalAcknowledged(ctx context.Context, userID, goalID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET acknowledged = 1
		WHERE id = ? AND user_id = ?`,
		goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("mark goal acknowledged: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Goal acknowledged", "user_id", userID, "goal_id", goalID)
	return nil
}
