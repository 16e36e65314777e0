package finance

import "finanzas/internal/models"

// RecomputeResult is the outcome of one recomputation pass.
type RecomputeResult struct {
	// Budgets holds every input budget in input order, with Spent corrected.
	Budgets []models.Budget
	// Changed lists the IDs of budgets whose Spent differed, in input order.
	Changed []string
	// Skipped counts budgets with an unusable window plus expense
	// transactions with no date.
	Skipped int
}

// RecomputeBudgetSpent re-derives every budget's Spent from the expense
// transactions of its category dated inside its inclusive window.
// Budgets whose value is already correct are copied untouched, so running
// the pass again on the result reports no changes.
func RecomputeBudgetSpent(transactions []models.Transaction, budgets []models.Budget) RecomputeResult {
	res := RecomputeResult{Budgets: make([]models.Budget, len(budgets))}

	for _, t := range transactions {
		if t.Type == models.TransactionTypeExpense && t.Date.IsZero() {
			res.Skipped++
		}
	}

	for i, b := range budgets {
		res.Budgets[i] = b

		w := Window{Start: b.StartDate, End: b.EndDate}
		if !w.Valid() {
			res.Skipped++
		}

		spent := SpentFor(transactions, b)
		if spent != b.Spent {
			res.Budgets[i].Spent = spent
			res.Changed = append(res.Changed, b.ID)
		}
	}

	return res
}

// SpentFor sums the expense transactions matching budget's category and
// window. A budget with an invalid window or no category has spent 0.
func SpentFor(transactions []models.Transaction, budget models.Budget) int64 {
	categoryID := BudgetCategoryOf(budget)
	w := Window{Start: budget.StartDate, End: budget.EndDate}
	if categoryID == "" || !w.Valid() {
		return 0
	}

	var spent int64
	for _, t := range transactions {
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		if CategoryOf(t) != categoryID {
			continue
		}
		if !w.Contains(t.Date) {
			continue
		}
		spent += t.Amount
	}
	return spent
}
