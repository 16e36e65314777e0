package models

import (
	"testing"
	"time"
)

// newYork mirrors what pgx hands back for a timestamptz on a server west of UTC.
var newYork = time.FixedZone("EST", -5*60*60)

func TestTransactionAfterFind(t *testing.T) {
	t.Run("restores UTC calendar date", func(t *testing.T) {
		stored := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		tx := &Transaction{Date: stored.In(newYork)}

		if err := tx.AfterFind(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.Date.Location() != time.UTC {
			t.Errorf("expected UTC, got %v", tx.Date.Location())
		}
		if y, m, d := tx.Date.Date(); y != 2024 || m != time.March || d != 1 {
			t.Errorf("expected 2024-03-01, got %04d-%02d-%02d", y, m, d)
		}
	})

	t.Run("zero date stays zero", func(t *testing.T) {
		tx := &Transaction{}
		if err := tx.AfterFind(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tx.Date.IsZero() {
			t.Errorf("expected zero date, got %v", tx.Date)
		}
	})
}

func TestBudgetAfterFind(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	b := &Budget{StartDate: start.In(newYork), EndDate: end.In(newYork)}

	if err := b.AfterFind(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.StartDate.Equal(start) || b.StartDate.Day() != 1 {
		t.Errorf("expected start 2024-03-01 UTC, got %v", b.StartDate)
	}
	if !b.EndDate.Equal(end) || b.EndDate.Day() != 31 {
		t.Errorf("expected end 2024-03-31 UTC, got %v", b.EndDate)
	}
}
