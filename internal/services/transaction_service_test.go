package services

import (
	"testing"
	"time"

	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("expense_without_account", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)

		tx, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID:  food.ID,
			Type:        models.TransactionTypeExpense,
			Amount:      1250,
			Description: " Lunch ",
			Date:        time.Date(2024, 3, 5, 22, 30, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be set")
		}
		if tx.Description != "Lunch" || tx.PaymentMethod != models.PaymentMethodCash {
			t.Errorf("unexpected transaction %+v", tx)
		}
		if !tx.Date.Equal(testutil.Date(2024, 3, 5)) {
			t.Errorf("expected date truncated to 2024-03-05, got %v", tx.Date)
		}
		if tx.Category == nil || tx.Category.ID != food.ID {
			t.Error("expected category to be attached")
		}
	})

	t.Run("defaults_date_to_today", func(t *testing.T) {
		f := newFixture(t)
		salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)

		tx, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID: salary.ID,
			Type:       models.TransactionTypeIncome,
			Amount:     100,
		})
		testutil.AssertNoError(t, err)
		if !tx.Date.Equal(testutil.Today()) {
			t.Errorf("expected today, got %v", tx.Date)
		}
	})

	t.Run("moves_account_balance", func(t *testing.T) {
		f := newFixture(t)
		salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		account := testutil.CreateTestAccountWithBalance(t, f.db, f.user.ID, 1000)

		_, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			AccountID: &account.ID, CategoryID: salary.ID, Type: models.TransactionTypeIncome, Amount: 5000,
		})
		testutil.AssertNoError(t, err)
		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			AccountID: &account.ID, CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 1500,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, f.db, account.ID, 4500)
	})

	t.Run("updates_budget_spent", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 10000,
			testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))

		_, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 3000, Date: testutil.Date(2024, 3, 31),
		})
		testutil.AssertNoError(t, err)
		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 999, Date: testutil.Date(2024, 4, 1),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertStoredSpent(t, f.db, budget.ID, 3000)
	})

	t.Run("rejects_invalid_input", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		other := testutil.CreateTestUser(t, f.db)
		foreign := testutil.CreateTestCategory(t, f.db, other.ID, models.CategoryTypeExpense)

		_, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{CategoryID: food.ID, Type: models.TransactionTypeExpense})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{CategoryID: food.ID, Type: "transfer", Amount: 1})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")

		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{CategoryID: food.ID, Type: models.TransactionTypeIncome, Amount: 1})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{CategoryID: foreign.ID, Type: models.TransactionTypeExpense, Amount: 1})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 1, PaymentMethod: "barter",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		missing := "0190a0b0-0000-7000-8000-000000000000"
		_, err = f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			AccountID: &missing, CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 1,
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestGetTransactionByID(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	tx := testutil.CreateTestTransaction(t, f.db, f.user.ID, food, 100)
	other := testutil.CreateTestUser(t, f.db)

	got, err := f.transactions.GetTransactionByID(f.user.ID, tx.ID)
	testutil.AssertNoError(t, err)
	if got.Category == nil || got.Category.ID != food.ID {
		t.Error("expected category to be preloaded")
	}

	_, err = f.transactions.GetTransactionByID(other.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestGetUserTransactions(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)
	account := testutil.CreateTestAccount(t, f.db, f.user.ID)

	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 500, testutil.Date(2024, 1, 10))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 1500, testutil.Date(2024, 2, 10))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, salary, 90000, testutil.Date(2024, 2, 1))
	coffee := testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 300, testutil.Date(2024, 3, 1))
	f.db.Model(coffee).Updates(map[string]any{"description": "Morning Coffee", "account_id": account.ID})

	other := testutil.CreateTestUser(t, f.db)
	otherFood := testutil.CreateTestCategory(t, f.db, other.ID, models.CategoryTypeExpense)
	testutil.CreateTestTransaction(t, f.db, other.ID, otherFood, 100)

	t.Run("newest_first", func(t *testing.T) {
		result, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 4 {
			t.Fatalf("expected 4 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].ID != coffee.ID {
			t.Errorf("expected newest transaction first, got %s", result.Data[0].Description)
		}
	})

	t.Run("ascending", func(t *testing.T) {
		result, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{Order: "asc"}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if !result.Data[0].Date.Equal(testutil.Date(2024, 1, 10)) {
			t.Errorf("expected oldest first, got %v", result.Data[0].Date)
		}
	})

	cases := []struct {
		name   string
		filter TransactionFilter
		want   int64
	}{
		{"date_range", TransactionFilter{FromDate: timePtr(testutil.Date(2024, 2, 1)), ToDate: timePtr(testutil.Date(2024, 2, 29))}, 2},
		{"type", TransactionFilter{Type: txTypePtr(models.TransactionTypeIncome)}, 1},
		{"category", TransactionFilter{CategoryID: &food.ID}, 3},
		{"amount_range", TransactionFilter{MinAmount: int64Ptr(400), MaxAmount: int64Ptr(1500)}, 2},
		{"account", TransactionFilter{AccountID: &account.ID}, 1},
		{"search", TransactionFilter{Search: "coffee"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, tc.filter)
			testutil.AssertNoError(t, err)
			if result.TotalItems != tc.want {
				t.Errorf("expected %d, got %d", tc.want, result.TotalItems)
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("move_between_budgets", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		travel := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		foodBudget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 10000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
		travelBudget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, travel.ID, 10000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))

		tx, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 4000, Date: testutil.Date(2024, 3, 10),
		})
		testutil.AssertNoError(t, err)

		updated, err := f.transactions.UpdateTransaction(f.user.ID, tx.ID, TransactionUpdateFields{
			CategoryID: &travel.ID,
			Amount:     int64Ptr(2500),
		})
		testutil.AssertNoError(t, err)
		if updated.CategoryID != travel.ID || updated.Amount != 2500 {
			t.Errorf("unexpected transaction %+v", updated)
		}

		testutil.AssertStoredSpent(t, f.db, foodBudget.ID, 0)
		testutil.AssertStoredSpent(t, f.db, travelBudget.ID, 2500)
	})

	t.Run("rebalances_accounts", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		first := testutil.CreateTestAccountWithBalance(t, f.db, f.user.ID, 10000)
		second := testutil.CreateTestAccountWithBalance(t, f.db, f.user.ID, 10000)

		tx, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
			AccountID: &first.ID, CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 3000,
		})
		testutil.AssertNoError(t, err)

		_, err = f.transactions.UpdateTransaction(f.user.ID, tx.ID, TransactionUpdateFields{
			AccountID: &second.ID,
			Amount:    int64Ptr(1000),
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, f.db, first.ID, 10000)
		testutil.AssertBalance(t, f.db, second.ID, 9000)

		_, err = f.transactions.UpdateTransaction(f.user.ID, tx.ID, TransactionUpdateFields{ClearAccount: true})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, f.db, second.ID, 10000)
	})

	t.Run("type_must_match_category", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, f.db, f.user.ID, food, 100)

		income := models.TransactionTypeIncome
		_, err := f.transactions.UpdateTransaction(f.user.ID, tx.ID, TransactionUpdateFields{Type: &income})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		_, err = f.transactions.UpdateTransaction(f.user.ID, tx.ID, TransactionUpdateFields{Amount: int64Ptr(0)})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestDeleteTransaction(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	account := testutil.CreateTestAccountWithBalance(t, f.db, f.user.ID, 10000)
	budget := testutil.CreateTestBudget(t, f.db, f.user.ID, food.ID)

	tx, err := f.transactions.CreateTransaction(f.user.ID, TransactionInput{
		AccountID: &account.ID, CategoryID: food.ID, Type: models.TransactionTypeExpense, Amount: 2000,
	})
	testutil.AssertNoError(t, err)
	testutil.AssertStoredSpent(t, f.db, budget.ID, 2000)

	testutil.AssertNoError(t, f.transactions.DeleteTransaction(f.user.ID, tx.ID))

	testutil.AssertBalance(t, f.db, account.ID, 10000)
	testutil.AssertStoredSpent(t, f.db, budget.ID, 0)

	err = f.transactions.DeleteTransaction(f.user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, salary, 300000, testutil.Date(2024, 3, 1))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 5000, testutil.Date(2024, 3, 15))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 7000, testutil.Date(2024, 4, 1))

	all, err := f.transactions.GetSummary(f.user.ID, nil, nil)
	testutil.AssertNoError(t, err)
	if all.TotalTransactions != 3 || all.TotalExpenses != 12000 || all.NetAmount != 288000 {
		t.Errorf("unexpected unbounded summary %+v", all)
	}

	march, err := f.transactions.GetSummary(f.user.ID, timePtr(testutil.Date(2024, 3, 1)), timePtr(testutil.Date(2024, 3, 31)))
	testutil.AssertNoError(t, err)
	if march.TotalIncome != 300000 || march.TotalExpenses != 5000 || march.ExpenseCount != 1 {
		t.Errorf("unexpected march summary %+v", march)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func txTypePtr(t models.TransactionType) *models.TransactionType { return &t }
