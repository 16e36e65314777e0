package models

import (
	"time"

	"finanzas/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// utcDate returns t in UTC. The zero time stays zero.
func utcDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Account{},
		&Category{},
		&Transaction{},
		&Budget{},
		&AuditLog{},
	}
}
