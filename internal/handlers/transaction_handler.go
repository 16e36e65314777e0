package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/services"
	"finanzas/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	AccountID     *string                `json:"account_id" binding:"omitempty,uuid"`
	CategoryID    string                 `json:"category_id" binding:"required,uuid"`
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount        int64                  `json:"amount" binding:"required,gt=0"`
	Description   string                 `json:"description" binding:"max=500"`
	PaymentMethod models.PaymentMethod   `json:"payment_method" binding:"omitempty,payment_method"`
	Date          string                 `json:"date" binding:"omitempty,calendar_date"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// An empty account_id detaches the transaction from its account.
type UpdateTransactionRequest struct {
	AccountID     *string                 `json:"account_id"`
	CategoryID    *string                 `json:"category_id" binding:"omitempty,uuid"`
	Type          *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount        *int64                  `json:"amount" binding:"omitempty,gt=0"`
	Description   *string                 `json:"description" binding:"omitempty,max=500"`
	PaymentMethod *models.PaymentMethod   `json:"payment_method" binding:"omitempty,payment_method"`
	Date          *string                 `json:"date" binding:"omitempty,calendar_date"`
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	AccountID     *string                `json:"account_id,omitempty"`
	CategoryID    string                 `json:"category_id"`
	Type          models.TransactionType `json:"type"`
	Amount        int64                  `json:"amount"`
	Description   string                 `json:"description"`
	PaymentMethod models.PaymentMethod   `json:"payment_method"`
	Date          string                 `json:"date"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense. The category type must match the transaction type.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.TransactionInput{
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date != nil {
		in.Date = *date
	}

	transaction, err := h.transactionService.CreateTransaction(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"type": transaction.Type, "amount": transaction.Amount, "category_id": transaction.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions handles the retrieval of transactions for a user
// @Summary     Get user transactions
// @Description Get a paginated list of transactions, newest first by default
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       order       query string false "asc or desc (default desc)"
// @Param       from_date   query string false "Start date (YYYY-MM-DD)"
// @Param       to_date     query string false "End date (YYYY-MM-DD)"
// @Param       type        query string false "income or expense"
// @Param       category_id query string false "Category ID"
// @Param       account_id  query string false "Account ID"
// @Param       min_amount  query int    false "Minimum amount in cents"
// @Param       max_amount  query int    false "Maximum amount in cents"
// @Param       search      query string false "Description contains"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, err = parseOptionalDate(c.Query("from_date"), "from_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseOptionalDate(c.Query("to_date"), "to_date"); err != nil {
		return filter, err
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income or expense")
		}
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		filter.CategoryID = &id
	}

	if v := c.Query("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
		}
		filter.AccountID = &id
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	filter.Search = strings.TrimSpace(c.Query("search"))

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating a transaction
// @Summary     Update transaction
// @Description Update a transaction. Account balances and budget spent follow the change.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TransactionUpdateFields{
		CategoryID:    req.CategoryID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}

	if req.AccountID != nil {
		if *req.AccountID == "" {
			fields.ClearAccount = true
		} else {
			id, err := uuid.Parse(*req.AccountID)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id"))
				return
			}
			fields.AccountID = &id
		}
	}

	if req.Date != nil {
		if fields.Date, err = parseOptionalDate(*req.Date, "date"); err != nil {
			respondWithError(c, err)
			return
		}
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetSummary returns income and expense totals
// @Summary     Transaction summary
// @Description Income, expense and balance totals, optionally limited to a date range
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} finance.TransactionSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/stats/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := parseOptionalDate(c.Query("from_date"), "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseOptionalDate(c.Query("to_date"), "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.GetSummary(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
