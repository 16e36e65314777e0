package integration

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
)

const importCSV = `type,amount,description,category,paymentMethod,date
expense,12.50,Groceries,Food,debit,2026-03-04
refund,3.00,Bad type,Food,cash,2026-03-05
income,2500.00,Salary,Salary,transfer,2026-03-01
expense,4.20,Coffee,Unknown,cash,2026-03-06
`

func (app *testApp) importCSV(t *testing.T, token, body string) map[string]any {
	t.Helper()
	rec := app.rawRequest("POST", "/api/v1/data/transactions/import", "text/csv", strings.NewReader(body), token)
	mustStatus(t, rec, http.StatusOK)
	return parseJSON(t, rec)
}

func TestDataFlow_ImportReportsSkippedRows(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "import@test.com", "password123")

	result := app.importCSV(t, token, importCSV)
	if result["created"].(float64) != 2 {
		t.Errorf("expected 2 created, got %v", result["created"])
	}
	skipped := result["skipped"].([]any)
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped rows, got %v", skipped)
	}
	lines := []float64{
		skipped[0].(map[string]any)["line"].(float64),
		skipped[1].(map[string]any)["line"].(float64),
	}
	if lines[0] != 3 || lines[1] != 5 {
		t.Errorf("expected skipped lines 3 and 5, got %v", lines)
	}

	rec := app.request("GET", "/api/v1/transactions/stats/summary", "", token)
	mustStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)
	if summary["total_expenses"].(float64) != 1250 || summary["total_income"].(float64) != 250000 {
		t.Errorf("unexpected totals after import: %v", summary)
	}
}

func TestDataFlow_ExportThenReimportUpdates(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "roundtrip@test.com", "password123")
	app.importCSV(t, token, importCSV)

	rec := app.request("GET", "/api/v1/data/transactions.csv", "", token)
	mustStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Errorf("expected attachment filename, got %q", cd)
	}

	exported := rec.Body.String()
	rows, err := csv.NewReader(strings.NewReader(exported)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][2] != "amount" {
		t.Errorf("unexpected header %v", rows[0])
	}

	// Re-importing the export matches rows by id instead of duplicating them.
	result := app.importCSV(t, token, exported)
	if result["created"].(float64) != 0 || result["updated"].(float64) != 2 {
		t.Errorf("expected 0 created and 2 updated, got %v", result)
	}

	rec = app.request("GET", "/api/v1/transactions", "", token)
	mustStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 transactions after reimport, got %.0f", total)
	}
}

func TestDataFlow_ImportRefreshesBudgets(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "importbudget@test.com", "password123")
	foodID := app.categoryID(t, token, "Food", "expense")
	budgetID := app.createMarchBudget(t, token, foodID, 10000)

	result := app.importCSV(t, token, importCSV)
	changed := result["changed_budgets"].([]any)
	if len(changed) != 1 || changed[0] != budgetID {
		t.Errorf("expected budget %s to change, got %v", budgetID, changed)
	}

	rec := app.request("GET", "/api/v1/data/budgets.csv", "", token)
	mustStatus(t, rec, http.StatusOK)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("budget export is not valid csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 budget, got %d", len(rows))
	}
	if spent := rows[1][3]; spent != "12.50" {
		t.Errorf("expected exported spent 12.50, got %s", spent)
	}
}

func TestDataFlow_MultipartUpload(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "multipart@test.com", "password123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(fw, importCSV)
	mw.Close()

	rec := app.rawRequest("POST", "/api/v1/data/transactions/import", mw.FormDataContentType(), &buf, token)
	mustStatus(t, rec, http.StatusOK)
	if created := parseJSON(t, rec)["created"].(float64); created != 2 {
		t.Errorf("expected 2 created, got %v", created)
	}
}

func TestDataFlow_ImportMissingColumns(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "badcsv@test.com", "password123")

	rec := app.rawRequest("POST", "/api/v1/data/transactions/import", "text/csv",
		strings.NewReader("type,amount\nexpense,1.00\n"), token)
	mustStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "INVALID_CSV" {
		t.Errorf("expected INVALID_CSV, got %v", code)
	}
}
