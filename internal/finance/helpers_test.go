package finance

import (
	"time"

	"finanzas/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(id string, typ models.TransactionType, categoryID string, amount int64, on time.Time) models.Transaction {
	t := models.Transaction{
		CategoryID: categoryID,
		Type:       typ,
		Amount:     amount,
		Date:       on,
	}
	t.ID = id
	return t
}

func budget(id, categoryID string, amount int64, start, end time.Time) models.Budget {
	b := models.Budget{
		CategoryID: categoryID,
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    end,
	}
	b.ID = id
	return b
}

func category(id, name string, typ models.CategoryType) models.Category {
	c := models.Category{Name: name, Type: typ}
	c.ID = id
	return c
}

const (
	income  = models.TransactionTypeIncome
	expense = models.TransactionTypeExpense
)
