package core

// CategoryTotal is an amount aggregated by category within one period.
// Percentage is always relative to the filtered total of the same
// transaction type, computed after every category in the period is known.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	CategoryIcon string
	Total        Money
	Count        int
	Percentage   float64
}

// HomeSummary is the canonical set of monthly totals. Every surface that
// shows "this month's numbers" must consume one of these rather than
// re-deriving totals, so two screens can never disagree for the same
// (user, month).
type HomeSummary struct {
	Year  int
	Month int // 1-12

	TotalIncomes  Money
	TotalExpenses Money
	Balance       Money

	ExpensesByCategory []CategoryTotal
	IncomesByCategory  []CategoryTotal

	// PreviousMonthExpenses carries the prior period's completed expense
	// total, with the same pending-bill exclusion applied.
	PreviousMonthExpenses Money
}
