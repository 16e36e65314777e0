package finance

import "finanzas/internal/models"

// Status classifies how much of a budget has been used.
type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

// warningThreshold is the percentage above which a budget is flagged.
const warningThreshold = 80.0

// Progress is a budget's spending measured against its ceiling.
type Progress struct {
	BudgetID   string  `json:"budget_id"`
	Budgeted   int64   `json:"budgeted"`
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Status     Status  `json:"status"`
}

// ProgressOf reports the progress of b from its stored Spent.
func ProgressOf(b models.Budget) Progress {
	p := Progress{
		BudgetID:  b.ID,
		Budgeted:  b.Amount,
		Spent:     b.Spent,
		Remaining: b.Amount - b.Spent,
	}
	if b.Amount > 0 {
		p.Percentage = float64(b.Spent*100) / float64(b.Amount)
	}

	switch {
	case b.Spent > b.Amount:
		p.Status = StatusExceeded
	case p.Percentage > warningThreshold:
		p.Status = StatusWarning
	default:
		p.Status = StatusGood
	}
	return p
}

// BudgetSummary aggregates a set of budgets.
type BudgetSummary struct {
	TotalBudget    int64 `json:"total_budget"`
	TotalSpent     int64 `json:"total_spent"`
	TotalRemaining int64 `json:"total_remaining"`
	OnTrack        int   `json:"on_track"`
	Exceeded       int   `json:"exceeded"`
	Total          int   `json:"total"`
}

// SummarizeBudgets totals budgets and counts how many are within their
// ceiling.
func SummarizeBudgets(budgets []models.Budget) BudgetSummary {
	var s BudgetSummary
	for _, b := range budgets {
		s.TotalBudget += b.Amount
		s.TotalSpent += b.Spent
		if b.Spent > b.Amount {
			s.Exceeded++
		} else {
			s.OnTrack++
		}
	}
	s.TotalRemaining = s.TotalBudget - s.TotalSpent
	s.Total = len(budgets)
	return s
}
