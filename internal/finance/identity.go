package finance

import "finanzas/internal/models"

// CategoryOf returns the canonical category identifier of a transaction.
// CategoryID wins; the embedded relation is consulted only when the ID is
// empty, which happens when a caller built the record from a joined row.
func CategoryOf(t models.Transaction) string {
	if t.CategoryID != "" {
		return t.CategoryID
	}
	if t.Category != nil {
		return t.Category.ID
	}
	return ""
}

// BudgetCategoryOf is CategoryOf for budgets.
func BudgetCategoryOf(b models.Budget) string {
	if b.CategoryID != "" {
		return b.CategoryID
	}
	if b.Category != nil {
		return b.Category.ID
	}
	return ""
}

// SignedAmount returns the amount of t with its ledger sign applied: income
// adds, expense subtracts. Unknown types contribute nothing.
func SignedAmount(t models.Transaction) int64 {
	switch t.Type {
	case models.TransactionTypeIncome:
		return t.Amount
	case models.TransactionTypeExpense:
		return -t.Amount
	default:
		return 0
	}
}
