package services

import (
	"io"
	"time"

	"gorm.io/gorm"

	"finanzas/internal/csvio"
	"finanzas/internal/finance"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name, currency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, name, currency *string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountUpdateFields holds the optional fields of an account update.
type AccountUpdateFields struct {
	Name        *string
	Description *string
	Currency    *string
	IsDefault   *bool
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, name string, accountType models.AccountType, description, currency string, initialBalance int64) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	ApplyTransaction(tx *gorm.DB, accountID string, transactionType models.TransactionType, amount int64) error
}

// CategoryUpdateFields holds the optional fields of a category update.
type CategoryUpdateFields struct {
	Name        *string
	Type        *models.CategoryType
	Description *string
	Icon        *string
	Color       *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	SeedDefaultCategories(userID string) ([]models.Category, error)
	ResetDefaultCategories(userID string) ([]models.Category, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *int64
	MaxAmount  *int64
	AccountID  *string
	Search     string
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	AccountID     *string
	CategoryID    string
	Type          models.TransactionType
	Amount        int64
	Description   string
	PaymentMethod models.PaymentMethod
	Date          time.Time
}

// TransactionUpdateFields holds the optional fields of a transaction update.
// ClearAccount detaches the transaction from its account.
type TransactionUpdateFields struct {
	AccountID     *string
	ClearAccount  bool
	CategoryID    *string
	Type          *models.TransactionType
	Amount        *int64
	Description   *string
	PaymentMethod *models.PaymentMethod
	Date          *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetSummary(userID string, from, to *time.Time) (*finance.TransactionSummary, error)
}

// SpentRecalculator re-derives the stored spent of every budget of a user.
// RecalculateSpent follows a ledger mutation; RefreshSpent precedes a read.
type SpentRecalculator interface {
	RecalculateSpent(userID string) (*finance.RecomputeResult, error)
	RefreshSpent(userID string) (*finance.RecomputeResult, error)
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Period     *models.BudgetPeriod
	CategoryID *string
	// ActiveOn keeps budgets whose window contains the date.
	ActiveOn *time.Time
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	CategoryID string
	Amount     int64
	Period     models.BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
}

// BudgetUpdateFields holds the optional fields of a budget update.
type BudgetUpdateFields struct {
	CategoryID *string
	Amount     *int64
	Period     *models.BudgetPeriod
	StartDate  *time.Time
	EndDate    *time.Time
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SpentRecalculator
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*finance.Progress, error)
	GetBudgetSummary(userID string) (*finance.BudgetSummary, error)
	UpdateBudgetSpent(userID, budgetID string) (*models.Budget, error)
}

// DashboardServicer defines the contract for derived dashboard views.
type DashboardServicer interface {
	GetStats(userID string) (*finance.DashboardStats, error)
	GetMonthlyTotals(userID string, year int) ([]finance.MonthTotal, error)
	GetCategoryBreakdown(userID string, categoryType models.CategoryType, within *finance.YearMonth) ([]finance.CategoryAmount, error)
	GetRecentTransactions(userID string, limit int) ([]models.Transaction, error)
	RenderMonthlyChart(userID string, year int, w io.Writer) error
	RenderCategoryChart(userID string, categoryType models.CategoryType, within *finance.YearMonth, w io.Writer) error
}

// ImportResult reports the outcome of a CSV import.
type ImportResult struct {
	Created        int              `json:"created"`
	Updated        int              `json:"updated"`
	Skipped        []csvio.RowError `json:"skipped"`
	ChangedBudgets []string         `json:"changed_budgets"`
}

// DataServicer defines the contract for CSV export and import.
type DataServicer interface {
	ExportTransactions(userID string, w io.Writer) error
	ExportBudgets(userID string, w io.Writer) error
	ImportTransactions(userID string, r io.Reader) (*ImportResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
