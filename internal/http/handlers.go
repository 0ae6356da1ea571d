package http

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"julius/internal/core"
	"julius/internal/period"
	"julius/internal/services"
)

type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: core.FormatBRL(m.Cents)}
}

type categoryTotalJSON struct {
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CategoryIcon string    `json:"category_icon,omitempty"`
	Total        moneyJSON `json:"total"`
	Count        int       `json:"count"`
	Percentage   float64   `json:"percentage"`
}

func toCategoryJSON(totals []core.CategoryTotal) []categoryTotalJSON {
	out := make([]categoryTotalJSON, 0, len(totals))
	for _, ct := range totals {
		out = append(out, categoryTotalJSON{
			CategoryID:   ct.CategoryID,
			CategoryName: ct.CategoryName,
			CategoryIcon: ct.CategoryIcon,
			Total:        toMoneyJSON(ct.Total),
			Count:        ct.Count,
			Percentage:   ct.Percentage,
		})
	}
	return out
}

type usageJSON struct {
	Level      string  `json:"level"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
	Color      string  `json:"color"`
}

type alertJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type summaryResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	TotalIncomes          moneyJSON `json:"total_incomes"`
	TotalExpenses         moneyJSON `json:"total_expenses"`
	Balance               moneyJSON `json:"balance"`
	PreviousMonthExpenses moneyJSON `json:"previous_month_expenses"`

	ExpensesByCategory []categoryTotalJSON `json:"expenses_by_category"`
	IncomesByCategory  []categoryTotalJSON `json:"incomes_by_category"`

	Usage usageJSON  `json:"usage"`
	Alert *alertJSON `json:"alert,omitempty"`
}

// handleSummary serves the month's canonical totals plus the usage tier and
// the highest-priority alert. Bill and goal lookups only feed the alert, so
// their failures degrade the alert instead of failing the totals.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	logger := requestLogger(ctx)

	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	year, month := parseYearMonth(r)
	p := period.Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.summaries.MonthSummary(ctx, userID, p)
	if err != nil {
		logger.ErrorContext(ctx, "Month summary failed", "error", err, "user_id", userID, "month", month, "year", year)
		errorJSON(w, http.StatusInternalServerError, "could not compute summary")
		return
	}

	usage := services.ClassifyUsage(summary.TotalExpenses, summary.TotalIncomes)

	now := time.Now()
	overview, err := s.bills.Reconcile(ctx, userID, now)
	if err != nil {
		logger.ErrorContext(ctx, "Bill reconciliation failed, alert degraded", "error", err, "user_id", userID)
		overview = nil
	}
	evals, err := s.goals.Evaluations(ctx, userID, month, year)
	if err != nil {
		logger.ErrorContext(ctx, "Goal evaluation failed, alert degraded", "error", err, "user_id", userID)
		evals = nil
	}

	resp := summaryResponse{
		Year:                  summary.Year,
		Month:                 summary.Month,
		TotalIncomes:          toMoneyJSON(summary.TotalIncomes),
		TotalExpenses:         toMoneyJSON(summary.TotalExpenses),
		Balance:               toMoneyJSON(summary.Balance),
		PreviousMonthExpenses: toMoneyJSON(summary.PreviousMonthExpenses),
		ExpensesByCategory:    toCategoryJSON(summary.ExpensesByCategory),
		IncomesByCategory:     toCategoryJSON(summary.IncomesByCategory),
		Usage: usageJSON{
			Level:      string(usage.Level),
			Percentage: usage.Percentage,
			Message:    usage.Message,
			Color:      usage.Color,
		},
	}

	if alert, ok := services.SelectAlert(services.AlertInput{
		Now:       now,
		Overview:  overview,
		Usage:     usage,
		Goals:     evals,
		Dismissed: parseDismissed(r),
	}); ok {
		resp.Alert = &alertJSON{Kind: string(alert.Kind), Message: alert.Message}
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseDismissed reads the comma-separated dismissed alert kinds sent by the
// client. Dismissals live on the client; the server holds no alert state.
func parseDismissed(r *http.Request) map[services.AlertKind]struct{} {
	raw := strings.TrimSpace(r.URL.Query().Get("dismissed"))
	if raw == "" {
		return nil
	}
	dismissed := make(map[services.AlertKind]struct{})
	for _, kind := range strings.Split(raw, ",") {
		if kind = strings.TrimSpace(kind); kind != "" {
			dismissed[services.AlertKind(kind)] = struct{}{}
		}
	}
	return dismissed
}

type openBillJSON struct {
	CardID       string    `json:"card_id"`
	Amount       moneyJSON `json:"amount"`
	BillMonth    int       `json:"bill_month"`
	BillYear     int       `json:"bill_year"`
	DueDate      string    `json:"due_date"`
	IsFutureBill bool      `json:"is_future_bill"`
}

type billsResponse struct {
	OpenBills           []openBillJSON `json:"open_bills"`
	HasFutureBills      bool           `json:"has_future_bills"`
	AllCurrentBillsPaid bool           `json:"all_current_bills_paid"`
	CanShowFutureBills  bool           `json:"can_show_future_bills"`
}

// handleBills runs a reconciliation pass and serves the per-card open bills.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	overview, err := s.bills.Reconcile(ctx, userID, time.Now())
	if err != nil {
		requestLogger(ctx).ErrorContext(ctx, "Bill reconciliation failed", "error", err, "user_id", userID)
		errorJSON(w, http.StatusInternalServerError, "could not reconcile bills")
		return
	}

	resp := billsResponse{
		OpenBills:           make([]openBillJSON, 0, len(overview.OpenBills)),
		HasFutureBills:      overview.HasFutureBills,
		AllCurrentBillsPaid: overview.AllCurrentBillsPaid,
		CanShowFutureBills:  overview.CanShowFutureBillsSection(),
	}
	for cardID, bill := range overview.OpenBills {
		resp.OpenBills = append(resp.OpenBills, openBillJSON{
			CardID:       cardID,
			Amount:       toMoneyJSON(bill.Amount),
			BillMonth:    bill.BillMonth,
			BillYear:     bill.BillYear,
			DueDate:      bill.DueDate.Format("2006-01-02"),
			IsFutureBill: bill.IsFutureBill,
		})
	}
	sort.Slice(resp.OpenBills, func(i, j int) bool {
		return resp.OpenBills[i].CardID < resp.OpenBills[j].CardID
	})

	writeJSON(w, http.StatusOK, resp)
}

type payBillRequest struct {
	CardID string `json:"card_id"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
	Paid   *bool  `json:"paid"`
}

// handlePayBill records a bill payment flag. The change is visible on the
// next reconciliation pass; nothing is cached in between.
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req payBillRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.CardID) == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "card_id is required")
		return
	}
	p := period.Period{Month: req.Month, Year: req.Year}
	if err := p.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}

	key := core.BillKey{CardID: req.CardID, Month: req.Month, Year: req.Year}
	if err := s.storage.SetBillPaid(ctx, userID, key, paid); err != nil {
		requestLogger(ctx).ErrorContext(ctx, "Set bill paid failed", "error", err, "user_id", userID, "card_id", req.CardID)
		errorJSON(w, http.StatusInternalServerError, "could not update bill status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"card_id": req.CardID, "month": req.Month, "year": req.Year, "paid": paid})
}

// handleExportSummary queues a spreadsheet export of one month's summary.
// The worker recomputes the summary when it picks the request up, so the
// exported numbers always match what the API currently serves.
func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	year, month := parseYearMonth(r)
	p := period.Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := requestLogger(ctx)
	if s.exports == nil {
		logger.WarnContext(ctx, "No export publisher configured, export request dropped",
			"user_id", userID, "month", month, "year", year)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}
	if err := s.exports.PublishSummaryExport(ctx, userID, month, year); err != nil {
		logger.ErrorContext(ctx, "Failed to publish export request",
			"error", err, "user_id", userID, "month", month, "year", year)
		errorJSON(w, http.StatusServiceUnavailable, "export queue unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
