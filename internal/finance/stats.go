package finance

import (
	"time"

	"finanzas/internal/models"
)

// BudgetStatus summarizes the budgets that start in the current month.
type BudgetStatus struct {
	TotalBudget int64 `json:"total_budget"`
	TotalSpent  int64 `json:"total_spent"`
	Remaining   int64 `json:"remaining"`
}

// DashboardStats is an on-demand snapshot of a user's financial position.
type DashboardStats struct {
	TotalBalance    int64        `json:"total_balance"`
	MonthlyIncome   int64        `json:"monthly_income"`
	MonthlyExpenses int64        `json:"monthly_expenses"`
	MonthlyBalance  int64        `json:"monthly_balance"`
	BudgetStatus    BudgetStatus `json:"budget_status"`
	// SkippedRecords counts transactions and budgets left out of the
	// month-bounded figures because they carry no date.
	SkippedRecords int `json:"skipped_records"`
}

// ComputeDashboardStats builds the dashboard for the calendar month of now,
// read in now's location. The budget figures use each budget's stored Spent,
// so callers should recompute first.
func ComputeDashboardStats(transactions []models.Transaction, budgets []models.Budget, now time.Time) DashboardStats {
	current := YearMonth{Year: now.Year(), Month: now.Month()}

	var stats DashboardStats
	for _, t := range transactions {
		stats.TotalBalance += SignedAmount(t)

		if t.Date.IsZero() {
			stats.SkippedRecords++
			continue
		}
		if !current.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			stats.MonthlyIncome += t.Amount
		case models.TransactionTypeExpense:
			stats.MonthlyExpenses += t.Amount
		}
	}
	stats.MonthlyBalance = stats.MonthlyIncome - stats.MonthlyExpenses

	for _, b := range budgets {
		if b.StartDate.IsZero() {
			stats.SkippedRecords++
			continue
		}
		if !current.Contains(b.StartDate) {
			continue
		}
		stats.BudgetStatus.TotalBudget += b.Amount
		stats.BudgetStatus.TotalSpent += b.Spent
	}
	stats.BudgetStatus.Remaining = stats.BudgetStatus.TotalBudget - stats.BudgetStatus.TotalSpent

	return stats
}
