package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/services"
)

// BudgetHandler handles budget-related HTTP requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request body for creating a budget.
type CreateBudgetRequest struct {
	CategoryID string              `json:"category_id" binding:"required,uuid"`
	Amount     int64               `json:"amount" binding:"required,gt=0"`
	Period     models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate  string              `json:"start_date" binding:"required,calendar_date"`
	EndDate    string              `json:"end_date" binding:"required,calendar_date"`
}

// UpdateBudgetRequest represents the request body for updating a budget.
type UpdateBudgetRequest struct {
	CategoryID *string              `json:"category_id" binding:"omitempty,uuid"`
	Amount     *int64               `json:"amount" binding:"omitempty,gt=0"`
	Period     *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate  *string              `json:"start_date" binding:"omitempty,calendar_date"`
	EndDate    *string              `json:"end_date" binding:"omitempty,calendar_date"`
}

// BudgetListQuery holds the list filters for budgets.
type BudgetListQuery struct {
	pagination.PageRequest
	Period     models.BudgetPeriod `form:"period" binding:"omitempty,budget_period"`
	CategoryID string              `form:"category_id" binding:"omitempty,uuid"`
	ActiveOn   string              `form:"active_on" binding:"omitempty,calendar_date"`
}

// CreateBudget handles creating a new budget.
// @Summary     Create a budget
// @Description Create a spending ceiling for an expense category over an inclusive date window
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, services.BudgetInput{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Period:     req.Period,
		StartDate:  *start,
		EndDate:    *end,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]any{"category_id": budget.CategoryID, "amount": budget.Amount})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets with optional filters.
// @Summary     List budgets
// @Description Get a paginated list of budgets with freshly derived spent values
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       period      query string false "weekly, monthly or yearly"
// @Param       category_id query string false "Category ID"
// @Param       active_on   query string false "Only budgets whose window contains this date (YYYY-MM-DD)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query BudgetListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.BudgetFilter
	if query.Period != "" {
		filter.Period = &query.Period
	}
	if query.CategoryID != "" {
		filter.CategoryID = &query.CategoryID
	}
	if filter.ActiveOn, err = parseOptionalDate(query.ActiveOn, "active_on"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating a budget.
// @Summary     Update budget
// @Description Update a budget. Spent is derived again for the new window and category.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.BudgetUpdateFields{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Period:     req.Period,
	}
	if req.StartDate != nil {
		if fields.StartDate, err = parseOptionalDate(*req.StartDate, "start_date"); err != nil {
			respondWithError(c, err)
			return
		}
	}
	if req.EndDate != nil {
		if fields.EndDate, err = parseOptionalDate(*req.EndDate, "end_date"); err != nil {
			respondWithError(c, err)
			return
		}
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetBudgetProgress handles retrieving budget progress.
// @Summary     Get budget progress
// @Description Spent, remaining and percentage of a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} finance.Progress "Budget progress"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// UpdateBudgetSpent re-derives the spent value of one budget.
// @Summary     Refresh budget spent
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget with refreshed spent"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/update-spent [post]
func (h *BudgetHandler) UpdateBudgetSpent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudgetSpent(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgetSummary returns totals across all budgets.
// @Summary     Budget summary
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.BudgetSummary "Budget totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/stats/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetBudgetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
