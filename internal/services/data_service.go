package services

import (
	"errors"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"finanzas/internal/csvio"
	apperrors "finanzas/internal/errors"
	"finanzas/internal/finance"
	"finanzas/internal/metrics"
	"finanzas/internal/models"
	"finanzas/internal/uuid"
)

// dataService exports and imports a user's data as CSV.
type dataService struct {
	db             *gorm.DB
	accountService AccountServicer
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewDataService creates a new DataServicer.
func NewDataService(db *gorm.DB, accountService AccountServicer, m *metrics.Metrics) DataServicer {
	return &dataService{
		db:             db,
		accountService: accountService,
		metrics:        m,
		now:            time.Now,
	}
}

// ExportTransactions writes every transaction of the user, newest first.
func (s *dataService) ExportTransactions(userID string, w io.Writer) error {
	state, err := loadState(s.db, userID)
	if err != nil {
		return err
	}

	rows := make([]csvio.TransactionRecord, 0, len(state.Transactions))
	for _, t := range state.Transactions {
		rows = append(rows, csvio.TransactionRecord{
			ID:            t.ID,
			Type:          string(t.Type),
			Amount:        t.Amount,
			Description:   t.Description,
			Category:      t.CategoryID,
			PaymentMethod: string(t.PaymentMethod),
			Date:          t.Date,
			CreatedAt:     t.CreatedAt,
		})
	}

	if err := csvio.WriteTransactions(w, rows); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ExportBudgets writes every budget of the user with spent derived from the
// current transactions.
func (s *dataService) ExportBudgets(userID string, w io.Writer) error {
	state, err := loadState(s.db, userID)
	if err != nil {
		return err
	}

	res := finance.RecomputeBudgetSpent(state.Transactions, state.Budgets)
	rows := make([]csvio.BudgetRecord, 0, len(res.Budgets))
	for _, b := range res.Budgets {
		rows = append(rows, csvio.BudgetRecord{
			ID:        b.ID,
			Category:  b.CategoryID,
			Amount:    b.Amount,
			Spent:     b.Spent,
			Period:    string(b.Period),
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
		})
	}

	if err := csvio.WriteBudgets(w, rows); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ImportTransactions merges a transaction CSV into the user's data. Rows
// whose id matches an existing transaction overwrite it; every other row is
// added under a new id. Category may be an id or a name of the row's type.
// Budget spending is recomputed once for the whole batch.
func (s *dataService) ImportTransactions(userID string, r io.Reader) (*ImportResult, error) {
	records, skipped, err := csvio.ReadTransactions(r, finance.CalendarDate(s.now()))
	if err != nil {
		if errors.Is(err, csvio.ErrMissingColumns) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidCSV, err.Error())
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidCSV, err)
	}
	if skipped == nil {
		skipped = []csvio.RowError{}
	}

	state, err := loadState(s.db, userID)
	if err != nil {
		return nil, err
	}

	categories := newCategoryIndex(state.Categories)
	existing := make(map[string]models.Transaction, len(state.Transactions))
	for _, t := range state.Transactions {
		existing[t.ID] = t
	}

	// assigned maps ids foreign to this user onto fresh ones, so repeated
	// rows with the same foreign id still collapse into one transaction.
	assigned := make(map[string]string)
	touched := make(map[string]bool)
	incoming := make([]models.Transaction, 0, len(records))

	for _, rec := range records {
		transactionType := models.TransactionType(rec.Type)
		if !validTransactionType(transactionType) {
			skipped = append(skipped, csvio.RowError{Line: rec.Line, Reason: "type must be income or expense"})
			continue
		}
		paymentMethod := models.PaymentMethod(rec.PaymentMethod)
		if !validPaymentMethod(paymentMethod) {
			skipped = append(skipped, csvio.RowError{Line: rec.Line, Reason: "unknown payment method " + rec.PaymentMethod})
			continue
		}
		category, ok := categories.resolve(rec.Category, models.CategoryType(transactionType))
		if !ok {
			skipped = append(skipped, csvio.RowError{Line: rec.Line, Reason: "unknown " + rec.Type + " category " + rec.Category})
			continue
		}

		t := models.Transaction{
			UserID:        userID,
			CategoryID:    category.ID,
			Type:          transactionType,
			Amount:        rec.Amount,
			Description:   rec.Description,
			PaymentMethod: paymentMethod,
			Date:          rec.Date,
		}
		if prev, ok := existing[rec.ID]; ok && rec.ID != "" {
			t.Base = prev.Base
			t.AccountID = prev.AccountID
		} else {
			id, ok := assigned[rec.ID]
			if !ok || rec.ID == "" {
				id = uuid.New()
				assigned[rec.ID] = id
			}
			t.ID = id
			if !rec.CreatedAt.IsZero() {
				t.CreatedAt = rec.CreatedAt
			}
		}

		touched[t.ID] = true
		incoming = append(incoming, t)
	}

	next, changed := finance.Apply(state, finance.MergeTransactions{Transactions: incoming})

	result := &ImportResult{Skipped: skipped, ChangedBudgets: changed}
	if result.ChangedBudgets == nil {
		result.ChangedBudgets = []string{}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range next.Transactions {
			if !touched[t.ID] {
				continue
			}
			if prev, ok := existing[t.ID]; ok {
				if err := s.overwrite(tx, prev, t); err != nil {
					return err
				}
				result.Updated++
				continue
			}
			t := t
			if err := tx.Create(&t).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result.Created++
		}
		return persistSpent(tx, finance.RecomputeResult{Budgets: next.Budgets, Changed: changed})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordImport(result.Created, result.Updated, len(result.Skipped))
	s.metrics.RecordRecompute(triggerImport, len(changed), 0)
	return result, nil
}

// overwrite replaces a stored transaction with its imported version and
// moves the account balance accordingly.
func (s *dataService) overwrite(tx *gorm.DB, prev, next models.Transaction) error {
	if prev.AccountID != nil {
		if err := s.accountService.ApplyTransaction(tx, *prev.AccountID, prev.Type, -prev.Amount); err != nil {
			return err
		}
	}

	updates := map[string]any{
		"category_id":    next.CategoryID,
		"type":           next.Type,
		"amount":         next.Amount,
		"description":    next.Description,
		"payment_method": next.PaymentMethod,
		"date":           next.Date,
	}
	if err := tx.Model(&models.Transaction{}).Where("id = ?", next.ID).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if next.AccountID != nil {
		return s.accountService.ApplyTransaction(tx, *next.AccountID, next.Type, next.Amount)
	}
	return nil
}

// categoryIndex resolves an imported category reference by id, then by
// case-insensitive name within the row's type.
type categoryIndex struct {
	byID   map[string]models.Category
	byName map[string]models.Category
}

func newCategoryIndex(categories []models.Category) categoryIndex {
	idx := categoryIndex{
		byID:   make(map[string]models.Category, len(categories)),
		byName: make(map[string]models.Category, len(categories)),
	}
	for _, c := range categories {
		idx.byID[c.ID] = c
		key := string(c.Type) + "/" + strings.ToLower(c.Name)
		if _, ok := idx.byName[key]; !ok {
			idx.byName[key] = c
		}
	}
	return idx
}

func (idx categoryIndex) resolve(ref string, categoryType models.CategoryType) (models.Category, bool) {
	if c, ok := idx.byID[ref]; ok {
		return c, c.Type == categoryType
	}
	c, ok := idx.byName[string(categoryType)+"/"+strings.ToLower(strings.TrimSpace(ref))]
	return c, ok
}
