package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeSavings    AccountType = "savings"
)

// Account is where money is held. Its currency is used for display only;
// aggregation never converts between currencies.
type Account struct {
	Base
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string      `gorm:"not null" json:"name"`
	Type        AccountType `gorm:"not null" json:"type"`
	Description string      `json:"description"`
	Balance     int64       `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency    string      `gorm:"size:3;not null;default:'USD'" json:"currency"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	IsDefault   bool        `gorm:"default:false" json:"is_default"`
}
