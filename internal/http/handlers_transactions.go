package http

import (
	"net/http"
	"strings"

	"julius/internal/core"
	"julius/internal/period"
)

type transactionJSON struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       moneyJSON `json:"amount"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	CategoryIcon string    `json:"category_icon,omitempty"`
	CreditCardID string    `json:"credit_card_id,omitempty"`
}

type createTransactionRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	CategoryIcon string `json:"category_icon"`
	CreditCardID string `json:"credit_card_id"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	year, month := parseYearMonth(r)
	if err := (period.Period{Month: month, Year: year}).Validate(); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.storage.TransactionsByMonth(ctx, userID, month, year)
	if err != nil {
		requestLogger(ctx).ErrorContext(ctx, "List transactions failed", "error", err, "user_id", userID, "month", month, "year", year)
		errorJSON(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionJSON{
			ID:           tx.ID,
			Description:  tx.Description,
			Amount:       toMoneyJSON(tx.Amount),
			Type:         string(tx.Type),
			Status:       string(tx.Status),
			Month:        tx.Month,
			Year:         tx.Year,
			CategoryID:   tx.CategoryID,
			CategoryName: tx.CategoryName,
			CategoryIcon: tx.CategoryIcon,
			CreditCardID: tx.CreditCardID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// handleCreateTransaction registers a movement against a billing period.
// Amounts arrive as decimal strings; the sign always comes from the type.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx)

	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "Invalid transaction payload", "error", err, "user_id", userID)
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	status := core.TransactionStatus(req.Status)
	if req.Status == "" {
		status = core.StatusCompleted
	}

	tx := core.Transaction{
		UserID:       userID,
		Description:  sanitizeInput(req.Description),
		Amount:       core.Money{Cents: cents},
		Type:         core.TransactionType(req.Type),
		Status:       status,
		Month:        req.Month,
		Year:         req.Year,
		CategoryID:   sanitizeInput(req.CategoryID),
		CategoryName: sanitizeInput(req.CategoryName),
		CategoryIcon: sanitizeInput(req.CategoryIcon),
		CreditCardID: sanitizeInput(req.CreditCardID),
	}
	if err := tx.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		logger.ErrorContext(ctx, "Create transaction failed", "error", err, "user_id", userID, "description", tx.Description, "amount_cents", tx.Amount.Cents)
		errorJSON(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	logger.InfoContext(ctx, "Transaction created", "user_id", userID, "transaction_id", id, "amount_cents", tx.Amount.Cents, "type", tx.Type)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
