package finance

import (
	"sort"
	"time"

	"finanzas/internal/models"
)

// TransactionsInMonth returns the transactions dated in the given month.
func TransactionsInMonth(transactions []models.Transaction, year int, month time.Month) []models.Transaction {
	ym := YearMonth{Year: year, Month: month}
	out := make([]models.Transaction, 0)
	for _, t := range transactions {
		if ym.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// TransactionsForCategory returns the transactions attributed to categoryID.
func TransactionsForCategory(transactions []models.Transaction, categoryID string) []models.Transaction {
	out := make([]models.Transaction, 0)
	if categoryID == "" {
		return out
	}
	for _, t := range transactions {
		if CategoryOf(t) == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// CategoryTotal folds the signed amounts of a category's transactions,
// optionally bounded to one month.
func CategoryTotal(transactions []models.Transaction, categoryID string, within *YearMonth) int64 {
	var total int64
	for _, t := range TransactionsForCategory(transactions, categoryID) {
		if within != nil && !within.Contains(t.Date) {
			continue
		}
		total += SignedAmount(t)
	}
	return total
}

// RecentTransactions returns the n newest transactions by date, ties broken
// by creation time. n <= 0 yields an empty slice.
func RecentTransactions(transactions []models.Transaction, n int) []models.Transaction {
	if n <= 0 {
		return []models.Transaction{}
	}
	out := make([]models.Transaction, len(transactions))
	copy(out, transactions)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := CalendarDate(out[i].Date), CalendarDate(out[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
