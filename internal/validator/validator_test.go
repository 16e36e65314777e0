package validator

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	Register()
}

type sample struct {
	Currency string `binding:"omitempty,iso4217"`
	Color    string `binding:"omitempty,hex_color"`
	TxType   string `binding:"omitempty,transaction_type"`
	Account  string `binding:"omitempty,account_type"`
	Period   string `binding:"omitempty,budget_period"`
	Method   string `binding:"omitempty,payment_method"`
	Date     string `binding:"omitempty,calendar_date"`
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"all_valid", sample{"EUR", "#1a2b3c", "expense", "savings", "weekly", "debit", "2024-03-31"}, true},
		{"rfc3339_date", sample{Date: "2024-03-31T10:00:00Z"}, true},
		{"bad_currency", sample{Currency: "EURO"}, false},
		{"bad_color", sample{Color: "red"}, false},
		{"transfer_type", sample{TxType: "transfer"}, false},
		{"investment_account", sample{Account: "investment"}, false},
		{"daily_period", sample{Period: "daily"}, false},
		{"bitcoin_method", sample{Method: "bitcoin"}, false},
		{"bad_date", sample{Date: "31/03/2024"}, false},
	}

	if _, ok := binding.Validator.Engine().(*validator.Validate); !ok {
		t.Fatal("expected go-playground validator engine")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-31T23:30:00-05:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected the written date, got %s", got)
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("expected error for empty date")
	}
}
