package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/services"
)

const maxRecentLimit = 50

// DashboardHandler serves the derived dashboard views.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns the dashboard snapshot for the current month
// @Summary     Dashboard statistics
// @Description Total balance, income and expenses of the current month, and the status of budgets starting this month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.DashboardStats "Dashboard statistics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.dashboardService.GetStats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMonthlyTotals returns income and expenses per month of a year
// @Summary     Monthly totals
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (default current year)"
// @Success     200 {array}  finance.MonthTotal "Twelve monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/monthly [get]
func (h *DashboardHandler) GetMonthlyTotals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.dashboardService.GetMonthlyTotals(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": totals})
}

// GetCategoryBreakdown returns totals per category
// @Summary     Category breakdown
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       type  query string false "income or expense (default expense)"
// @Param       month query string false "Limit to a month (YYYY-MM)"
// @Success     200 {array}  finance.CategoryAmount "Totals per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/categories [get]
func (h *DashboardHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryType := models.CategoryType(c.DefaultQuery("type", string(models.CategoryTypeExpense)))
	within, err := parseOptionalMonth(c.Query("month"), "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	breakdown, err := h.dashboardService.GetCategoryBreakdown(userID, categoryType, within)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": breakdown})
}

// GetRecentTransactions returns the latest transactions
// @Summary     Recent transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Number of transactions (default 5, max 50)"
// @Success     200 {array}  models.Transaction "Recent transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/recent [get]
func (h *DashboardHandler) GetRecentTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxRecentLimit {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be between 1 and 50"))
			return
		}
	}

	transactions, err := h.dashboardService.GetRecentTransactions(userID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetMonthlyChart renders the monthly totals of a year as a PNG line chart
// @Summary     Monthly chart
// @Tags        dashboard
// @Produce     png
// @Security    BearerAuth
// @Param       year query int false "Year (default current year)"
// @Success     200 {file} binary "PNG image"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Nothing to plot"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/charts/monthly.png [get]
func (h *DashboardHandler) GetMonthlyChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dashboardService.RenderMonthlyChart(userID, year, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetCategoryChart renders the category breakdown as a PNG pie chart
// @Summary     Category chart
// @Tags        dashboard
// @Produce     png
// @Security    BearerAuth
// @Param       type  query string false "income or expense (default expense)"
// @Param       month query string false "Limit to a month (YYYY-MM)"
// @Success     200 {file} binary "PNG image"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Nothing to plot"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/charts/categories.png [get]
func (h *DashboardHandler) GetCategoryChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryType := models.CategoryType(c.DefaultQuery("type", string(models.CategoryTypeExpense)))
	within, err := parseOptionalMonth(c.Query("month"), "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dashboardService.RenderCategoryChart(userID, categoryType, within, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func parseYear(c *gin.Context) (int, error) {
	v := c.Query("year")
	if v == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1900 || year > 9999 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year")
	}
	return year, nil
}
