package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/services"
)

// maxImportSize bounds the accepted CSV upload.
const maxImportSize = 5 << 20

// DataHandler serves CSV export and import.
type DataHandler struct {
	dataService  services.DataServicer
	auditService services.AuditServicer
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(dataService services.DataServicer, auditService services.AuditServicer) *DataHandler {
	return &DataHandler{dataService: dataService, auditService: auditService}
}

// ExportTransactions streams the user's transactions as CSV
// @Summary     Export transactions
// @Tags        data
// @Produce     text/csv
// @Security    BearerAuth
// @Success     200 {file} binary "CSV file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data/transactions.csv [get]
func (h *DataHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dataService.ExportTransactions(userID, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportBudgets streams the user's budgets as CSV
// @Summary     Export budgets
// @Tags        data
// @Produce     text/csv
// @Security    BearerAuth
// @Success     200 {file} binary "CSV file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data/budgets.csv [get]
func (h *DataHandler) ExportBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dataService.ExportBudgets(userID, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="budgets.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportTransactions merges a CSV file into the user's transactions
// @Summary     Import transactions
// @Description Merge transactions from CSV by id. Rows that cannot be used are reported and skipped.
// @Tags        data
// @Accept      multipart/form-data
// @Accept      text/csv
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file false "CSV file (multipart upload)"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Unreadable CSV"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data/transactions/import [post]
func (h *DataHandler) ImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidCSV, err))
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.dataService.ImportTransactions(userID, body)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "IMPORT_TRANSACTIONS", "transaction", "", c.ClientIP(),
		map[string]any{"created": result.Created, "updated": result.Updated, "skipped": len(result.Skipped)})

	c.JSON(http.StatusOK, result)
}
