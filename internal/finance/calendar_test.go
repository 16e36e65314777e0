package finance

import (
	"testing"
	"time"
)

func TestCalendarDate(t *testing.T) {
	t.Run("drops_time_of_day", func(t *testing.T) {
		got := CalendarDate(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
		if !got.Equal(date(2024, 3, 31)) {
			t.Errorf("expected 2024-03-31, got %s", got)
		}
	})

	t.Run("reads_date_in_own_location", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*3600)
		// 2024-03-31 22:00 at UTC-5 is 2024-04-01 03:00 UTC.
		got := CalendarDate(time.Date(2024, 3, 31, 22, 0, 0, 0, loc))
		if !got.Equal(date(2024, 3, 31)) {
			t.Errorf("expected 2024-03-31, got %s", got)
		}
	})

	t.Run("zero_stays_zero", func(t *testing.T) {
		if !CalendarDate(time.Time{}).IsZero() {
			t.Error("expected zero time")
		}
	})
}

func TestWindow(t *testing.T) {
	w := Window{Start: date(2024, 3, 1), End: date(2024, 3, 31)}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start_inclusive", date(2024, 3, 1), true},
		{"end_inclusive", date(2024, 3, 31), true},
		{"end_late_in_day", time.Date(2024, 3, 31, 18, 30, 0, 0, time.UTC), true},
		{"day_before", date(2024, 2, 29), false},
		{"day_after", date(2024, 4, 1), false},
		{"zero", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	t.Run("inverted_is_invalid", func(t *testing.T) {
		inv := Window{Start: date(2024, 4, 1), End: date(2024, 3, 1)}
		if inv.Valid() {
			t.Error("expected inverted window to be invalid")
		}
		if inv.Contains(date(2024, 3, 15)) {
			t.Error("invalid window should contain nothing")
		}
	})

	t.Run("single_day", func(t *testing.T) {
		one := Window{Start: date(2024, 3, 5), End: date(2024, 3, 5)}
		if !one.Contains(date(2024, 3, 5)) {
			t.Error("expected single-day window to contain its day")
		}
	})
}

func TestYearMonth(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.February}
	if !ym.First().Equal(date(2024, 2, 1)) {
		t.Errorf("unexpected first day %s", ym.First())
	}
	if !ym.Last().Equal(date(2024, 2, 29)) {
		t.Errorf("unexpected last day %s", ym.Last())
	}
	if ym.Contains(date(2023, 2, 10)) {
		t.Error("different year must not match")
	}
	if _, ok := MonthOf(time.Time{}); ok {
		t.Error("zero time has no month")
	}
}
