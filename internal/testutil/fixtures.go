package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finanzas/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns midnight UTC of the current date.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return Date(y, m, d)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a cash account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, 0)
}

// CreateTestAccountWithBalance creates a cash account with the given balance (in cents).
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     models.AccountTypeCash,
		Balance:  balance,
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestCategoryNamed creates a category with the given name and type.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Color:  "#4f46e5",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction dated today. The type follows
// the category's type.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category *models.Category, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, category, amount, Today())
}

// CreateTestTransactionOn creates a transaction on the given date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID string, category *models.Category, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		CategoryID:    category.ID,
		Type:          models.TransactionType(category.Type),
		Amount:        amount,
		Description:   fmt.Sprintf("Test Transaction %d", nextID()),
		PaymentMethod: models.PaymentMethodCash,
		Date:          date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a monthly budget covering the current month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string) *models.Budget {
	t.Helper()

	today := Today()
	start := Date(today.Year(), today.Month(), 1)
	return CreateTestBudgetWindow(t, db, userID, categoryID, 10000, start, start.AddDate(0, 1, -1))
}

// CreateTestBudgetWindow creates a budget with an explicit window.
func CreateTestBudgetWindow(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64, start, end time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    end,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
