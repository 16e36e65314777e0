package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for a user. The first account a user
// creates becomes the default one.
func (s *accountService) CreateAccount(userID, name string, accountType models.AccountType, description, currency string, initialBalance int64) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	switch accountType {
	case models.AccountTypeCash, models.AccountTypeBank, models.AccountTypeCreditCard, models.AccountTypeSavings:
	case "":
		accountType = models.AccountTypeCash
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown account type")
	}

	if currency == "" {
		currency = "USD"
	}

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		Type:        accountType,
		Description: description,
		Balance:     initialBalance,
		Currency:    strings.ToUpper(currency),
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		account.IsDefault = count == 0

		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetUserAccounts retrieves a paginated list of active accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ? AND is_active = ?", userID, true)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order(page.OrderBy("created_at")).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an active account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ? AND is_active = ?", accountID, userID, true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies the non-nil fields. Marking an account as default
// clears the flag on the user's other accounts.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if fields.Name != nil && strings.TrimSpace(*fields.Name) != "" {
		updates["name"] = strings.TrimSpace(*fields.Name)
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Currency != nil && *fields.Currency != "" {
		updates["currency"] = strings.ToUpper(*fields.Currency)
	}
	if fields.IsDefault != nil {
		updates["is_default"] = *fields.IsDefault
	}

	if len(updates) == 0 {
		return account, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if fields.IsDefault != nil && *fields.IsDefault {
			if err := tx.Model(&models.Account{}).
				Where("user_id = ? AND id <> ?", userID, account.ID).
				UpdateColumn("is_default", false).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Model(account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload to get fresh data
	if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// DeleteAccount deactivates an account. Its transactions keep their
// reference and still count toward every aggregate.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	updates := map[string]any{"is_active": false, "is_default": false}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApplyTransaction moves the balance of an account by a transaction's
// effect. A negative amount reverses a previously applied transaction.
// Credit cards: positive balance = amount owed (expense increases, income/payment decreases).
func (s *accountService) ApplyTransaction(tx *gorm.DB, accountID string, transactionType models.TransactionType, amount int64) error {
	var account models.Account
	if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var delta int64
	switch transactionType {
	case models.TransactionTypeIncome:
		delta = amount
	case models.TransactionTypeExpense:
		delta = -amount
	default:
		return apperrors.ErrInvalidTransactionType
	}
	if account.Type == models.AccountTypeCreditCard {
		delta = -delta
	}

	if err := tx.Model(&account).UpdateColumn("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
