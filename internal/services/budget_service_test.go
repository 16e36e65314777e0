package services

import (
	"testing"

	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("computes_initial_spent", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 1200, testutil.Date(2024, 3, 1))
		testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 800, testutil.Date(2024, 3, 31))
		testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 500, testutil.Date(2024, 2, 29))

		budget, err := f.budgets.CreateBudget(f.user.ID, BudgetInput{
			CategoryID: food.ID,
			Amount:     5000,
			StartDate:  testutil.Date(2024, 3, 1),
			EndDate:    testutil.Date(2024, 3, 31),
		})
		testutil.AssertNoError(t, err)

		if budget.Spent != 2000 {
			t.Errorf("expected spent 2000, got %d", budget.Spent)
		}
		if budget.Period != models.BudgetPeriodMonthly {
			t.Errorf("expected default monthly period, got %s", budget.Period)
		}
		testutil.AssertStoredSpent(t, f.db, budget.ID, 2000)
	})

	t.Run("single_day_window", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 700, testutil.Date(2024, 5, 5))

		budget, err := f.budgets.CreateBudget(f.user.ID, BudgetInput{
			CategoryID: food.ID, Amount: 1000, Period: models.BudgetPeriodWeekly,
			StartDate: testutil.Date(2024, 5, 5), EndDate: testutil.Date(2024, 5, 5),
		})
		testutil.AssertNoError(t, err)
		if budget.Spent != 700 {
			t.Errorf("expected spent 700, got %d", budget.Spent)
		}
	})

	t.Run("rejects_invalid_input", func(t *testing.T) {
		f := newFixture(t)
		food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
		salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)
		march := BudgetInput{CategoryID: food.ID, Amount: 100, StartDate: testutil.Date(2024, 3, 1), EndDate: testutil.Date(2024, 3, 31)}

		in := march
		in.Amount = 0
		_, err := f.budgets.CreateBudget(f.user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		in = march
		in.StartDate, in.EndDate = in.EndDate, in.StartDate
		_, err = f.budgets.CreateBudget(f.user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_BUDGET_WINDOW")

		in = march
		in.CategoryID = salary.ID
		_, err = f.budgets.CreateBudget(f.user.ID, in)
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		in = march
		in.Period = "daily"
		_, err = f.budgets.CreateBudget(f.user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		in = march
		in.CategoryID = "0190a0b0-0000-7000-8000-000000000000"
		_, err = f.budgets.CreateBudget(f.user.ID, in)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetUserBudgets(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	travel := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)

	march := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 5000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 5000, testutil.Date(2024, 4, 1), testutil.Date(2024, 4, 30))
	yearly := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, travel.ID, 90000, testutil.Date(2024, 1, 1), testutil.Date(2024, 12, 31))
	f.db.Model(yearly).Update("period", models.BudgetPeriodYearly)

	// Written behind the service's back: the stored spent is stale.
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 1500, testutil.Date(2024, 3, 20))

	t.Run("refreshes_spent", func(t *testing.T) {
		result, err := f.budgets.GetUserBudgets(f.user.ID, pagination.PageRequest{}, BudgetFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Fatalf("expected 3 budgets, got %d", result.TotalItems)
		}
		for _, b := range result.Data {
			if b.ID == march.ID && b.Spent != 1500 {
				t.Errorf("expected refreshed spent 1500, got %d", b.Spent)
			}
			if b.Category == nil {
				t.Error("expected category to be preloaded")
			}
		}
	})

	t.Run("filters", func(t *testing.T) {
		yearlyPeriod := models.BudgetPeriodYearly
		byPeriod, err := f.budgets.GetUserBudgets(f.user.ID, pagination.PageRequest{}, BudgetFilter{Period: &yearlyPeriod})
		testutil.AssertNoError(t, err)
		if byPeriod.TotalItems != 1 {
			t.Errorf("expected 1 yearly budget, got %d", byPeriod.TotalItems)
		}

		byCategory, err := f.budgets.GetUserBudgets(f.user.ID, pagination.PageRequest{}, BudgetFilter{CategoryID: &food.ID})
		testutil.AssertNoError(t, err)
		if byCategory.TotalItems != 2 {
			t.Errorf("expected 2 food budgets, got %d", byCategory.TotalItems)
		}

		activeOn, err := f.budgets.GetUserBudgets(f.user.ID, pagination.PageRequest{}, BudgetFilter{ActiveOn: timePtr(testutil.Date(2024, 3, 31))})
		testutil.AssertNoError(t, err)
		if activeOn.TotalItems != 2 {
			t.Errorf("expected 2 budgets active on 2024-03-31, got %d", activeOn.TotalItems)
		}
	})
}

func TestBudgetIsolation(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	travel := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	salary := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeIncome)
	budget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 5000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))

	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, travel, 900, testutil.Date(2024, 3, 10))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, salary, 9000, testutil.Date(2024, 3, 10))

	other := testutil.CreateTestUser(t, f.db)
	otherFood := testutil.CreateTestCategory(t, f.db, other.ID, models.CategoryTypeExpense)
	testutil.CreateTestTransactionOn(t, f.db, other.ID, otherFood, 4000, testutil.Date(2024, 3, 10))

	got, err := f.budgets.GetBudgetByID(f.user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if got.Spent != 0 {
		t.Errorf("expected spent 0, got %d", got.Spent)
	}

	_, err = f.budgets.GetBudgetByID(other.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestUpdateBudget(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	travel := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 1000, testutil.Date(2024, 3, 10))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, travel, 4000, testutil.Date(2024, 4, 10))

	budget, err := f.budgets.CreateBudget(f.user.ID, BudgetInput{
		CategoryID: food.ID, Amount: 5000, StartDate: testutil.Date(2024, 3, 1), EndDate: testutil.Date(2024, 3, 31),
	})
	testutil.AssertNoError(t, err)

	t.Run("category_and_window", func(t *testing.T) {
		updated, err := f.budgets.UpdateBudget(f.user.ID, budget.ID, BudgetUpdateFields{
			CategoryID: &travel.ID,
			StartDate:  timePtr(testutil.Date(2024, 4, 1)),
			EndDate:    timePtr(testutil.Date(2024, 4, 30)),
			Amount:     int64Ptr(6000),
		})
		testutil.AssertNoError(t, err)
		if updated.Spent != 4000 || updated.Amount != 6000 || updated.CategoryID != travel.ID {
			t.Errorf("unexpected budget %+v", updated)
		}
		testutil.AssertStoredSpent(t, f.db, budget.ID, 4000)
	})

	t.Run("inverted_window", func(t *testing.T) {
		_, err := f.budgets.UpdateBudget(f.user.ID, budget.ID, BudgetUpdateFields{
			EndDate: timePtr(testutil.Date(2024, 3, 1)),
		})
		testutil.AssertAppError(t, err, "INVALID_BUDGET_WINDOW")
	})

	t.Run("negative_amount", func(t *testing.T) {
		_, err := f.budgets.UpdateBudget(f.user.ID, budget.ID, BudgetUpdateFields{Amount: int64Ptr(-1)})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestDeleteBudget(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudget(t, f.db, f.user.ID, food.ID)

	testutil.AssertNoError(t, f.budgets.DeleteBudget(f.user.ID, budget.ID))
	_, err := f.budgets.GetBudgetByID(f.user.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestGetBudgetProgress(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 10000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 8500, testutil.Date(2024, 3, 15))

	progress, err := f.budgets.GetBudgetProgress(f.user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	if progress.Spent != 8500 || progress.Remaining != 1500 {
		t.Errorf("unexpected progress %+v", progress)
	}
	if progress.Percentage != 85 {
		t.Errorf("expected 85%%, got %v", progress.Percentage)
	}
	if progress.Status != "warning" {
		t.Errorf("expected warning status, got %s", progress.Status)
	}
}

func TestGetBudgetSummary(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	travel := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 1000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, travel.ID, 5000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 1500, testutil.Date(2024, 3, 2))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, travel, 2000, testutil.Date(2024, 3, 2))

	summary, err := f.budgets.GetBudgetSummary(f.user.ID)
	testutil.AssertNoError(t, err)

	if summary.TotalBudget != 6000 || summary.TotalSpent != 3500 || summary.TotalRemaining != 2500 {
		t.Errorf("unexpected totals %+v", summary)
	}
	if summary.OnTrack != 1 || summary.Exceeded != 1 || summary.Total != 2 {
		t.Errorf("unexpected counts %+v", summary)
	}
}

func TestUpdateBudgetSpent(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 1000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 400, testutil.Date(2024, 3, 2))

	updated, err := f.budgets.UpdateBudgetSpent(f.user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if updated.Spent != 400 {
		t.Errorf("expected spent 400, got %d", updated.Spent)
	}

	_, err = f.budgets.UpdateBudgetSpent(f.user.ID, "0190a0b0-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestRecalculateSpent(t *testing.T) {
	f := newFixture(t)
	food := testutil.CreateTestCategory(t, f.db, f.user.ID, models.CategoryTypeExpense)
	stale := testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 1000, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	testutil.CreateTestBudgetWindow(t, f.db, f.user.ID, food.ID, 1000, testutil.Date(2024, 5, 1), testutil.Date(2024, 5, 31))
	testutil.CreateTestTransactionOn(t, f.db, f.user.ID, food, 250, testutil.Date(2024, 3, 9))

	first, err := f.budgets.RecalculateSpent(f.user.ID)
	testutil.AssertNoError(t, err)
	if len(first.Changed) != 1 || first.Changed[0] != stale.ID {
		t.Fatalf("expected only the stale budget to change, got %v", first.Changed)
	}

	second, err := f.budgets.RecalculateSpent(f.user.ID)
	testutil.AssertNoError(t, err)
	if len(second.Changed) != 0 {
		t.Errorf("expected a second pass to change nothing, got %v", second.Changed)
	}

	if got := counterValue(t, f, "finanzas_budget_spent_updates_total"); got != 1 {
		t.Errorf("expected one spent update recorded, got %v", got)
	}
}
