package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
)

// AssertAppError checks that err is an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("want %s, got no error", code)
	case !errors.As(err, &appErr):
		t.Fatalf("want %s, got %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("want %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reloads an account and checks its stored balance in cents.
func AssertBalance(t *testing.T, db *gorm.DB, accountID string, want int64) {
	t.Helper()

	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err != nil {
		t.Fatalf("load account %s: %v", accountID, err)
	}
	if account.Balance != want {
		t.Errorf("account %s: balance %d, want %d", accountID, account.Balance, want)
	}
}

// AssertStoredSpent reloads a budget and checks the spent cache as written,
// without recomputing it.
func AssertStoredSpent(t *testing.T, db *gorm.DB, budgetID string, want int64) {
	t.Helper()

	var budget models.Budget
	if err := db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		t.Fatalf("load budget %s: %v", budgetID, err)
	}
	if budget.Spent != want {
		t.Errorf("budget %s: stored spent %d, want %d", budgetID, budget.Spent, want)
	}
}
