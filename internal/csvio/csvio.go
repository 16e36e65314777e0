// Package csvio reads and writes the transaction and budget CSV files used
// for export and bulk import. Amounts are written in major units ("12.50")
// and dates as YYYY-MM-DD.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionHeader is the column order written by WriteTransactions.
var TransactionHeader = []string{"id", "type", "amount", "description", "category", "paymentMethod", "date", "createdAt"}

// BudgetHeader is the column order written by WriteBudgets.
var BudgetHeader = []string{"id", "category", "amount", "spent", "period", "startDate", "endDate"}

// requiredTransactionColumns must all be present for an import to start.
var requiredTransactionColumns = []string{"type", "amount", "description", "category", "paymentMethod", "date"}

// ErrMissingColumns is returned when an import file lacks required headers.
var ErrMissingColumns = errors.New("csv is missing required columns")

// TransactionRecord is one transaction row. Category holds a category ID on
// export; on import it may also be a category name.
type TransactionRecord struct {
	ID            string
	Type          string
	Amount        int64
	Description   string
	Category      string
	PaymentMethod string
	Date          time.Time
	CreatedAt     time.Time
	// Line is the source line of an imported row.
	Line          int
}

// BudgetRecord is one budget row.
type BudgetRecord struct {
	ID        string
	Category  string
	Amount    int64
	Spent     int64
	Period    string
	StartDate time.Time
	EndDate   time.Time
}

// RowError describes a row left out of an import. Line is 1-based and
// counts the header.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// FormatAmount renders minor units as a decimal string with two places.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseAmount parses a decimal amount in major units into minor units.
// More than two fractional digits are rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if cents.Abs().GreaterThan(decimal.New(1, 15)) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return cents.IntPart(), nil
}

// WriteTransactions writes a header and one row per record.
func WriteTransactions(w io.Writer, rows []TransactionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionHeader); err != nil {
		return err
	}
	for _, r := range rows {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			r.ID,
			r.Type,
			FormatAmount(r.Amount),
			r.Description,
			r.Category,
			r.PaymentMethod,
			formatDate(r.Date),
			created,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBudgets writes a header and one row per record.
func WriteBudgets(w io.Writer, rows []BudgetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BudgetHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.ID,
			r.Category,
			FormatAmount(r.Amount),
			FormatAmount(r.Spent),
			r.Period,
			formatDate(r.StartDate),
			formatDate(r.EndDate),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactions parses an import file. Columns may come in any order and
// unknown columns are ignored. A missing id, type, paymentMethod or date
// falls back to empty, "expense", "cash" and today respectively. Rows without
// a description, a positive amount or a category are reported and skipped.
func ReadTransactions(r io.Reader, today time.Time) ([]TransactionRecord, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrMissingColumns
	}
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range requiredTransactionColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	get := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		records []TransactionRecord
		skipped []RowError
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, RowError{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec := TransactionRecord{
			Line:          line,
			ID:            get(row, "id"),
			Type:          strings.ToLower(get(row, "type")),
			Description:   get(row, "description"),
			Category:      get(row, "category"),
			PaymentMethod: strings.ToLower(get(row, "paymentMethod")),
		}
		if rec.Type == "" {
			rec.Type = "expense"
		}
		if rec.PaymentMethod == "" {
			rec.PaymentMethod = "cash"
		}

		amount, err := ParseAmount(get(row, "amount"))
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}
		rec.Amount = amount

		switch {
		case rec.Description == "":
			skipped = append(skipped, RowError{Line: line, Reason: "description is required"})
			continue
		case rec.Amount <= 0:
			skipped = append(skipped, RowError{Line: line, Reason: "amount must be greater than zero"})
			continue
		case rec.Category == "":
			skipped = append(skipped, RowError{Line: line, Reason: "category is required"})
			continue
		}

		if raw := get(row, "date"); raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				skipped = append(skipped, RowError{Line: line, Reason: fmt.Sprintf("invalid date %q", raw)})
				continue
			}
			rec.Date = d
		} else {
			rec.Date = today
		}

		if raw := get(row, "createdAt"); raw != "" {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				rec.CreatedAt = ts
			}
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and keeps the written date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
