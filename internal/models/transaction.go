package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// PaymentMethod records how a transaction was paid.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodDebit    PaymentMethod = "debit"
	PaymentMethodCredit   PaymentMethod = "credit"
)

// Transaction represents a single dated income or expense.
// Date is the calendar date the transaction is attributed to and is stored
// as midnight UTC; CreatedAt is when the record was written.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID     *string         `gorm:"type:uuid" json:"account_id,omitempty"`
	CategoryID    string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        int64           `gorm:"type:bigint;not null" json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod PaymentMethod   `gorm:"not null;default:'cash'" json:"payment_method"`
	Date          time.Time       `gorm:"not null;index" json:"date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// AfterFind puts Date back in UTC. Drivers such as pgx decode timestamptz in
// the server's local zone, which would shift the calendar date west of UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.Date = utcDate(t.Date)
	return nil
}
