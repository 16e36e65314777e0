package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_UpdateMovesBalance(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "txupdate@test.com", "password123")
	foodID := app.categoryID(t, token, "Food", "expense")

	walletID := app.createAccount(t, token, `{"name":"Wallet","initial_balance":10000}`)
	bankID := app.createAccount(t, token, `{"name":"Bank","type":"bank","initial_balance":50000}`)

	txID := app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"type":"expense","amount":2500,"description":"Lunch","date":"2026-03-10"}`, walletID, foodID))
	if got := app.accountBalance(t, token, walletID); got != 7500 {
		t.Fatalf("expected wallet 7500, got %d", got)
	}

	// Move the expense to the bank and raise the amount.
	rec := app.request("PUT", "/api/v1/transactions/"+txID,
		fmt.Sprintf(`{"account_id":%q,"amount":4000}`, bankID), token)
	mustStatus(t, rec, http.StatusOK)
	tx := object(t, parseJSON(t, rec), "transaction")
	if tx["amount"].(float64) != 4000 {
		t.Errorf("expected amount 4000, got %v", tx["amount"])
	}

	if got := app.accountBalance(t, token, walletID); got != 10000 {
		t.Errorf("expected wallet restored to 10000, got %d", got)
	}
	if got := app.accountBalance(t, token, bankID); got != 46000 {
		t.Errorf("expected bank 46000, got %d", got)
	}

	// An empty account_id detaches the transaction.
	rec = app.request("PUT", "/api/v1/transactions/"+txID, `{"account_id":""}`, token)
	mustStatus(t, rec, http.StatusOK)
	if _, ok := object(t, parseJSON(t, rec), "transaction")["account_id"]; ok {
		t.Error("expected account_id to be cleared")
	}
	if got := app.accountBalance(t, token, bankID); got != 50000 {
		t.Errorf("expected bank restored to 50000, got %d", got)
	}
}

func TestTransactionFlow_DeleteReversesBalance(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "txdelete@test.com", "password123")
	salaryID := app.categoryID(t, token, "Salary", "income")

	accountID := app.createAccount(t, token, `{"name":"Checking"}`)
	txID := app.createTransaction(t, token, fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"type":"income","amount":90000,"date":"2026-03-01"}`, accountID, salaryID))

	rec := app.request("DELETE", "/api/v1/transactions/"+txID, "", token)
	mustStatus(t, rec, http.StatusNoContent)

	if got := app.accountBalance(t, token, accountID); got != 0 {
		t.Errorf("expected balance 0 after delete, got %d", got)
	}

	rec = app.request("GET", "/api/v1/transactions/"+txID, "", token)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestTransactionFlow_CategoryTypeMustMatch(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "mismatch@test.com", "password123")
	salaryID := app.categoryID(t, token, "Salary", "income")

	rec := app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":100}`, salaryID), token)
	mustStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "CATEGORY_TYPE_MISMATCH" {
		t.Errorf("expected CATEGORY_TYPE_MISMATCH, got %v", code)
	}
}

func TestTransactionFlow_WithoutAccount(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "noacct@test.com", "password123")
	foodID := app.categoryID(t, token, "Food", "expense")

	rec := app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":1200,"date":"2026-03-03"}`, foodID), token)
	mustStatus(t, rec, http.StatusCreated)
	tx := object(t, parseJSON(t, rec), "transaction")
	if tx["payment_method"] != "cash" {
		t.Errorf("expected default payment method cash, got %v", tx["payment_method"])
	}
	if tx["date"] != "2026-03-03T00:00:00Z" {
		t.Errorf("expected midnight UTC date, got %v", tx["date"])
	}
}

func TestTransactionFlow_FilterAndSummary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "filter@test.com", "password123")
	salaryID := app.categoryID(t, token, "Salary", "income")
	foodID := app.categoryID(t, token, "Food", "expense")
	transportID := app.categoryID(t, token, "Transport", "expense")

	for _, body := range []string{
		fmt.Sprintf(`{"category_id":%q,"type":"income","amount":300000,"description":"March salary","date":"2026-03-01"}`, salaryID),
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":4500,"description":"Groceries","date":"2026-03-04"}`, foodID),
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":1500,"description":"Bus pass","date":"2026-03-05"}`, transportID),
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":8000,"description":"Groceries","date":"2026-04-02"}`, foodID),
	} {
		app.createTransaction(t, token, body)
	}

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{"all", "", 4},
		{"expenses", "?type=expense", 3},
		{"category", "?category_id=" + foodID, 2},
		{"date range", "?from_date=2026-03-01&to_date=2026-03-31", 3},
		{"search", "?search=groc", 2},
		{"amount range", "?min_amount=2000&max_amount=9000", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request("GET", "/api/v1/transactions"+tt.query, "", token)
			mustStatus(t, rec, http.StatusOK)
			if got := parseJSON(t, rec)["total_items"].(float64); got != tt.want {
				t.Errorf("expected %.0f transactions, got %.0f", tt.want, got)
			}
		})
	}

	rec := app.request("GET", "/api/v1/transactions/stats/summary?from_date=2026-03-01&to_date=2026-03-31", "", token)
	mustStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)
	if summary["total_income"].(float64) != 300000 {
		t.Errorf("expected income 300000, got %v", summary["total_income"])
	}
	if summary["total_expenses"].(float64) != 6000 {
		t.Errorf("expected expenses 6000, got %v", summary["total_expenses"])
	}
	if summary["net_amount"].(float64) != 294000 {
		t.Errorf("expected net 294000, got %v", summary["net_amount"])
	}
	if summary["total_transactions"].(float64) != 3 {
		t.Errorf("expected 3 transactions, got %v", summary["total_transactions"])
	}
}

func TestTransactionFlow_OtherUserCannotSee(t *testing.T) {
	app := setupApp(t)
	owner, _, _ := app.registerUser(t, "owner@test.com", "password123")
	intruder, _, _ := app.registerUser(t, "intruder@test.com", "password123")
	foodID := app.categoryID(t, owner, "Food", "expense")

	txID := app.createTransaction(t, owner, fmt.Sprintf(
		`{"category_id":%q,"type":"expense","amount":700,"date":"2026-03-08"}`, foodID))

	rec := app.request("GET", "/api/v1/transactions/"+txID, "", intruder)
	mustStatus(t, rec, http.StatusNotFound)

	rec = app.request("DELETE", "/api/v1/transactions/"+txID, "", intruder)
	mustStatus(t, rec, http.StatusNotFound)

	// The owner's category is not usable by another user either.
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":100}`, foodID), intruder)
	mustStatus(t, rec, http.StatusNotFound)
}
