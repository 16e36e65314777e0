package services

import (
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"finanzas/internal/charts"
	apperrors "finanzas/internal/errors"
	"finanzas/internal/finance"
	"finanzas/internal/metrics"
	"finanzas/internal/models"
)

// dashboardService builds derived views from a user's full snapshot.
type dashboardService struct {
	db      *gorm.DB
	budgets SpentRecalculator
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDashboardService creates a new DashboardServicer. budgets refreshes
// budget spending before stats are computed and may be nil.
func NewDashboardService(db *gorm.DB, budgets SpentRecalculator, m *metrics.Metrics) DashboardServicer {
	return &dashboardService{
		db:      db,
		budgets: budgets,
		metrics: m,
		now:     time.Now,
	}
}

// snapshot loads the user's state with budget spending re-derived.
func (s *dashboardService) snapshot(userID string) (finance.State, error) {
	if s.budgets != nil {
		if _, err := s.budgets.RefreshSpent(userID); err != nil {
			return finance.State{}, err
		}
	}
	return loadState(s.db, userID)
}

// GetStats returns the balance and the current month's figures.
func (s *dashboardService) GetStats(userID string) (*finance.DashboardStats, error) {
	state, err := s.snapshot(userID)
	if err != nil {
		return nil, err
	}

	stats := finance.ComputeDashboardStats(state.Transactions, state.Budgets, s.now())
	s.metrics.RecordSkipped("dashboard", stats.SkippedRecords)
	return &stats, nil
}

// GetMonthlyTotals returns twelve months of income and expenses for year.
func (s *dashboardService) GetMonthlyTotals(userID string, year int) ([]finance.MonthTotal, error) {
	if year <= 0 {
		year = s.now().Year()
	}

	state, err := loadState(s.db, userID)
	if err != nil {
		return nil, err
	}
	return finance.MonthlyTotals(state.Transactions, year), nil
}

// GetCategoryBreakdown totals transactions per category of one type.
func (s *dashboardService) GetCategoryBreakdown(userID string, categoryType models.CategoryType, within *finance.YearMonth) ([]finance.CategoryAmount, error) {
	if !validCategoryType(categoryType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	state, err := loadState(s.db, userID)
	if err != nil {
		return nil, err
	}
	return finance.CategoryBreakdown(state.Transactions, state.Categories, categoryType, within), nil
}

// GetRecentTransactions returns the user's latest transactions.
func (s *dashboardService) GetRecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 5
	}

	state, err := loadState(s.db, userID)
	if err != nil {
		return nil, err
	}

	recent := finance.RecentTransactions(state.Transactions, limit)

	byID := make(map[string]*models.Category, len(state.Categories))
	for i := range state.Categories {
		byID[state.Categories[i].ID] = &state.Categories[i]
	}
	for i := range recent {
		recent[i].Category = byID[recent[i].CategoryID]
	}
	return recent, nil
}

// RenderMonthlyChart writes a PNG of the year's monthly income and expenses.
func (s *dashboardService) RenderMonthlyChart(userID string, year int, w io.Writer) error {
	months, err := s.GetMonthlyTotals(userID, year)
	if err != nil {
		return err
	}
	if year <= 0 {
		year = s.now().Year()
	}
	return chartError(charts.MonthlyLine(w, year, months))
}

// RenderCategoryChart writes a PNG pie of the category breakdown.
func (s *dashboardService) RenderCategoryChart(userID string, categoryType models.CategoryType, within *finance.YearMonth, w io.Writer) error {
	items, err := s.GetCategoryBreakdown(userID, categoryType, within)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s by category", categoryType)
	if within != nil {
		title = fmt.Sprintf("%s %04d-%02d", title, within.Year, int(within.Month))
	}
	return chartError(charts.CategoryPie(w, title, items))
}

func chartError(err error) error {
	switch {
	case err == nil:
		return nil
	case err == charts.ErrNoData:
		return apperrors.ErrNoData
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}
