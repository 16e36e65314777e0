package services

import (
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/finance"
	"finanzas/internal/models"
)

// loadState reads every transaction, category and budget of a user.
func loadState(db *gorm.DB, userID string) (finance.State, error) {
	var state finance.State

	if err := db.Where("user_id = ?", userID).Order("date DESC").Order("created_at DESC").Find(&state.Transactions).Error; err != nil {
		return finance.State{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("user_id = ?", userID).Order("type ASC").Order("name ASC").Find(&state.Categories).Error; err != nil {
		return finance.State{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("user_id = ?", userID).Order("start_date ASC").Order("created_at ASC").Find(&state.Budgets).Error; err != nil {
		return finance.State{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return state, nil
}

// loadExpenses reads a user's expense transactions, the only kind that
// counts toward a budget.
func loadExpenses(db *gorm.DB, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := db.Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// persistSpent writes the Spent of each changed budget. Unchanged budgets
// are not touched.
func persistSpent(db *gorm.DB, res finance.RecomputeResult) error {
	if len(res.Changed) == 0 {
		return nil
	}

	changed := make(map[string]bool, len(res.Changed))
	for _, id := range res.Changed {
		changed[id] = true
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, b := range res.Budgets {
			if !changed[b.ID] {
				continue
			}
			if err := tx.Model(&models.Budget{}).Where("id = ?", b.ID).UpdateColumn("spent", b.Spent).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}
