package models

import (
	"time"

	"gorm.io/gorm"
)

// BudgetPeriod represents the period type for a budget. It is informational:
// the window a budget covers is StartDate..EndDate.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget is a spending ceiling for one expense category over an inclusive
// date window. Spent is derived from transactions and is only a cache.
type Budget struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string       `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     int64        `gorm:"type:bigint;not null" json:"amount"`
	Spent      int64        `gorm:"type:bigint;not null;default:0" json:"spent"`
	Period     BudgetPeriod `gorm:"not null" json:"period"`
	StartDate  time.Time    `gorm:"not null" json:"start_date"`
	EndDate    time.Time    `gorm:"not null" json:"end_date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// AfterFind puts the window bounds back in UTC.
func (b *Budget) AfterFind(tx *gorm.DB) error {
	b.StartDate = utcDate(b.StartDate)
	b.EndDate = utcDate(b.EndDate)
	return nil
}
