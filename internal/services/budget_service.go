package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/finance"
	"finanzas/internal/logger"
	"finanzas/internal/metrics"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// Recompute triggers, used as the metrics label.
const (
	triggerRead     = "read"
	triggerMutation = "mutation"
	triggerManual   = "manual"
	triggerImport   = "import"
)

// budgetService handles budget-related business logic. The stored Spent of
// a budget is a cache of its category's expenses inside its window; it is
// refreshed before budgets are returned.
type budgetService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

// NewBudgetService creates a new BudgetServicer. m may be nil.
func NewBudgetService(db *gorm.DB, m *metrics.Metrics) BudgetServicer {
	return &budgetService{db: db, metrics: m}
}

// CreateBudget creates a new budget for an expense category. Its spent is
// computed from the transactions that already exist.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "budget amount must be greater than zero")
	}
	if in.Period == "" {
		in.Period = models.BudgetPeriodMonthly
	}
	if !validPeriod(in.Period) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}

	window := finance.Window{Start: finance.CalendarDate(in.StartDate), End: finance.CalendarDate(in.EndDate)}
	if !window.Valid() {
		return nil, apperrors.ErrInvalidBudgetWindow
	}

	category, err := s.expenseCategory(userID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     in.Amount,
		Period:     in.Period,
		StartDate:  window.Start,
		EndDate:    window.End,
	}

	expenses, err := loadExpenses(s.db, userID)
	if err != nil {
		return nil, err
	}
	budget.Spent = finance.SpentFor(expenses, *budget)

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.Category = category
	return budget, nil
}

func validPeriod(p models.BudgetPeriod) bool {
	switch p {
	case models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
		return true
	}
	return false
}

// expenseCategory loads a category of the user and checks it can carry a budget.
func (s *budgetService) expenseCategory(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch, "budgets require an expense category")
	}
	return &category, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	if _, err := s.recalculate(userID, triggerRead); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.Period != nil {
		base = base.Where("period = ?", *filter.Period)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOn != nil {
		day := finance.CalendarDate(*filter.ActiveOn)
		base = base.Where("start_date <= ? AND end_date >= ?", day, day)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order(page.OrderBy("start_date")).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget with a freshly derived spent.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return s.refreshBudget(userID, budgetID, triggerRead)
}

func (s *budgetService) findBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies the non-nil fields and re-derives spent, since a new
// category or window changes which expenses count.
func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if fields.CategoryID != nil && *fields.CategoryID != budget.CategoryID {
		category, err := s.expenseCategory(userID, *fields.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
		budget.CategoryID = category.ID
		budget.Category = category
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "budget amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
		budget.Amount = *fields.Amount
	}
	if fields.Period != nil {
		if !validPeriod(*fields.Period) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
		}
		updates["period"] = *fields.Period
		budget.Period = *fields.Period
	}
	if fields.StartDate != nil {
		budget.StartDate = finance.CalendarDate(*fields.StartDate)
		updates["start_date"] = budget.StartDate
	}
	if fields.EndDate != nil {
		budget.EndDate = finance.CalendarDate(*fields.EndDate)
		updates["end_date"] = budget.EndDate
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if !(finance.Window{Start: budget.StartDate, End: budget.EndDate}).Valid() {
		return nil, apperrors.ErrInvalidBudgetWindow
	}

	expenses, err := loadExpenses(s.db, userID)
	if err != nil {
		return nil, err
	}
	budget.Spent = finance.SpentFor(expenses, *budget)
	updates["spent"] = budget.Spent

	if err := s.db.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress reports spending against the budget's ceiling over its
// own window.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*finance.Progress, error) {
	budget, err := s.refreshBudget(userID, budgetID, triggerRead)
	if err != nil {
		return nil, err
	}

	progress := finance.ProgressOf(*budget)
	return &progress, nil
}

// GetBudgetSummary totals every budget of the user.
func (s *budgetService) GetBudgetSummary(userID string) (*finance.BudgetSummary, error) {
	res, err := s.recalculate(userID, triggerRead)
	if err != nil {
		return nil, err
	}

	summary := finance.SummarizeBudgets(res.Budgets)
	return &summary, nil
}

// UpdateBudgetSpent re-derives the spent of a single budget on request.
func (s *budgetService) UpdateBudgetSpent(userID, budgetID string) (*models.Budget, error) {
	return s.refreshBudget(userID, budgetID, triggerManual)
}

// RecalculateSpent re-derives the spent of every budget of the user. It is
// called after each transaction mutation.
func (s *budgetService) RecalculateSpent(userID string) (*finance.RecomputeResult, error) {
	return s.recalculate(userID, triggerMutation)
}

// RefreshSpent is RecalculateSpent for callers about to read budget figures.
func (s *budgetService) RefreshSpent(userID string) (*finance.RecomputeResult, error) {
	return s.recalculate(userID, triggerRead)
}

func (s *budgetService) recalculate(userID, trigger string) (*finance.RecomputeResult, error) {
	expenses, err := loadExpenses(s.db, userID)
	if err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Order("start_date ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := finance.RecomputeBudgetSpent(expenses, budgets)
	if err := persistSpent(s.db, res); err != nil {
		return nil, err
	}

	s.metrics.RecordRecompute(trigger, len(res.Changed), res.Skipped)
	logger.Get().Debugw("recomputed budget spent",
		"user_id", userID,
		"trigger", trigger,
		"budgets", len(res.Budgets),
		"changed", len(res.Changed),
		"skipped", res.Skipped,
	)

	return &res, nil
}

func (s *budgetService) refreshBudget(userID, budgetID, trigger string) (*models.Budget, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	expenses, err := loadExpenses(s.db, userID)
	if err != nil {
		return nil, err
	}

	res := finance.RecomputeBudgetSpent(expenses, []models.Budget{*budget})
	if err := persistSpent(s.db, res); err != nil {
		return nil, err
	}
	s.metrics.RecordRecompute(trigger, len(res.Changed), res.Skipped)

	budget.Spent = res.Budgets[0].Spent
	return budget, nil
}
