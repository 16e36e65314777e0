package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/finance"
	"finanzas/internal/logger"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	budgets        SpentRecalculator
}

// NewTransactionService creates a new TransactionServicer. Budget spending
// is re-derived through budgets after every mutation; budgets may be nil.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, budgets SpentRecalculator) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		budgets:        budgets,
	}
}

func validTransactionType(t models.TransactionType) bool {
	return t == models.TransactionTypeIncome || t == models.TransactionTypeExpense
}

func validPaymentMethod(p models.PaymentMethod) bool {
	switch p {
	case models.PaymentMethodCash, models.PaymentMethodTransfer, models.PaymentMethodDebit, models.PaymentMethodCredit:
		return true
	}
	return false
}

// category loads a category of the user and checks that it sits on the same
// side of the ledger as the transaction.
func (s *transactionService) category(userID, categoryID string, transactionType models.TransactionType) (*models.Category, error) {
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if string(category.Type) != string(transactionType) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}
	return &category, nil
}

// CreateTransaction records a new income or expense. The date defaults to
// today.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if !validTransactionType(in.Type) {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodCash
	}
	if !validPaymentMethod(in.PaymentMethod) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
	}

	date := finance.CalendarDate(in.Date)
	if date.IsZero() {
		date = finance.CalendarDate(time.Now())
	}

	category, err := s.category(userID, in.CategoryID, in.Type)
	if err != nil {
		return nil, err
	}

	if in.AccountID != nil {
		if _, err := s.accountService.GetAccountByID(userID, *in.AccountID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:        userID,
		AccountID:     in.AccountID,
		CategoryID:    category.ID,
		Type:          in.Type,
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		PaymentMethod: in.PaymentMethod,
		Date:          date,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if transaction.AccountID != nil {
			return s.accountService.ApplyTransaction(tx, *transaction.AccountID, transaction.Type, transaction.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recalculate(userID)

	transaction.Category = category
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's
// transactions, newest first unless the page asks for ascending order.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order(page.OrderBy("date")).
		Order(page.OrderBy("created_at")).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", finance.CalendarDate(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", finance.CalendarDate(*f.ToDate))
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the non-nil fields. The previous effect on the
// account balance is reversed and the new one applied in the same database
// transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	current, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	previous := *current

	next := *current
	if fields.Type != nil {
		if !validTransactionType(*fields.Type) {
			return nil, apperrors.ErrInvalidTransactionType
		}
		next.Type = *fields.Type
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		next.Amount = *fields.Amount
	}
	if fields.CategoryID != nil {
		next.CategoryID = *fields.CategoryID
	}
	if fields.Description != nil {
		next.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.PaymentMethod != nil {
		if !validPaymentMethod(*fields.PaymentMethod) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
		}
		next.PaymentMethod = *fields.PaymentMethod
	}
	if fields.Date != nil {
		if fields.Date.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
		}
		next.Date = finance.CalendarDate(*fields.Date)
	}
	switch {
	case fields.ClearAccount:
		next.AccountID = nil
	case fields.AccountID != nil:
		if _, err := s.accountService.GetAccountByID(userID, *fields.AccountID); err != nil {
			return nil, err
		}
		id := *fields.AccountID
		next.AccountID = &id
	}

	// A type change must still agree with the (possibly new) category.
	category, err := s.category(userID, next.CategoryID, next.Type)
	if err != nil {
		return nil, err
	}
	next.Category = nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if previous.AccountID != nil {
			if err := s.accountService.ApplyTransaction(tx, *previous.AccountID, previous.Type, -previous.Amount); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"account_id":     next.AccountID,
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
	})
	if err != nil {
		return nil, err
	}

	s.recalculate(userID)

	next.Category = category
	return &next, nil
}

// DeleteTransaction deletes a transaction and reverses its effect on the
// account balance.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Transaction{}, "id = ?", transaction.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if transaction.AccountID != nil {
			return s.accountService.ApplyTransaction(tx, *transaction.AccountID, transaction.Type, -transaction.Amount)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recalculate(userID)
	return nil
}

// GetSummary totals the user's transactions between from and to, both
// inclusive and both optional.
func (s *transactionService) GetSummary(userID string, from, to *time.Time) (*finance.TransactionSummary, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var w finance.Window
	if from != nil {
		w.Start = finance.CalendarDate(*from)
	}
	if to != nil {
		w.End = finance.CalendarDate(*to)
	}

	summary := finance.SummarizeTransactions(transactions, w)
	return &summary, nil
}

// recalculate refreshes budget spending after a mutation. The mutation has
// already committed, so a failure is logged rather than returned; the next
// budget read repairs the cache.
func (s *transactionService) recalculate(userID string) {
	if s.budgets == nil {
		return
	}
	if _, err := s.budgets.RecalculateSpent(userID); err != nil {
		logger.Get().Errorw("failed to recalculate budget spent", "error", err, "user_id", userID)
	}
}
