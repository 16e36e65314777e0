package finance

import (
	"time"

	"finanzas/internal/models"
)

// TransactionSummary totals transactions by side of the ledger.
type TransactionSummary struct {
	TotalIncome       int64 `json:"total_income"`
	TotalExpenses     int64 `json:"total_expenses"`
	NetAmount         int64 `json:"net_amount"`
	IncomeCount       int   `json:"income_count"`
	ExpenseCount      int   `json:"expense_count"`
	TotalTransactions int   `json:"total_transactions"`
}

// SummarizeTransactions totals the transactions dated inside w. A zero bound
// leaves that side of the window open; a window with both bounds zero
// includes every transaction, dated or not.
func SummarizeTransactions(transactions []models.Transaction, w Window) TransactionSummary {
	unbounded := w.Start.IsZero() && w.End.IsZero()

	var s TransactionSummary
	for _, t := range transactions {
		if !unbounded && !w.within(t.Date) {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			s.TotalIncome += t.Amount
			s.IncomeCount++
		case models.TransactionTypeExpense:
			s.TotalExpenses += t.Amount
			s.ExpenseCount++
		default:
			continue
		}
		s.TotalTransactions++
	}
	s.NetAmount = s.TotalIncome - s.TotalExpenses
	return s
}

// MonthTotal is one month of income and expenses.
type MonthTotal struct {
	Month    time.Month `json:"month"`
	Income   int64      `json:"income"`
	Expenses int64      `json:"expenses"`
	Balance  int64      `json:"balance"`
}

// MonthlyTotals returns twelve entries, January first, for year.
func MonthlyTotals(transactions []models.Transaction, year int) []MonthTotal {
	out := make([]MonthTotal, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1)
	}
	for _, t := range transactions {
		if t.Date.IsZero() || t.Date.Year() != year {
			continue
		}
		m := &out[t.Date.Month()-1]
		switch t.Type {
		case models.TransactionTypeIncome:
			m.Income += t.Amount
		case models.TransactionTypeExpense:
			m.Expenses += t.Amount
		}
	}
	for i := range out {
		out[i].Balance = out[i].Income - out[i].Expenses
	}
	return out
}

// CategoryAmount is the total of one category.
type CategoryAmount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Amount     int64  `json:"amount"`
}

// CategoryBreakdown totals the transactions of each category of the given
// type, optionally within one month. Transactions of the other type never
// count. Categories with nothing to show are omitted; order follows
// categories.
func CategoryBreakdown(
	transactions []models.Transaction,
	categories []models.Category,
	categoryType models.CategoryType,
	within *YearMonth,
) []CategoryAmount {
	txType := models.TransactionType(categoryType)

	totals := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != txType {
			continue
		}
		if within != nil && !within.Contains(t.Date) {
			continue
		}
		totals[CategoryOf(t)] += t.Amount
	}

	out := make([]CategoryAmount, 0)
	for _, c := range categories {
		if c.Type != categoryType {
			continue
		}
		amount := totals[c.ID]
		if amount <= 0 {
			continue
		}
		out = append(out, CategoryAmount{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Amount:     amount,
		})
	}
	return out
}
