package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"finanzas/internal/logger"
	"finanzas/internal/models"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates an AuditServicer writing to the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// encodeChanges renders a change set for the changes column. Nil values are
// dropped and an empty set is stored as "".
func encodeChanges(changes map[string]any) (string, error) {
	kept := make(map[string]any, len(changes))
	for k, v := range changes {
		if v != nil {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return "", nil
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Log records a mutation of a user's ledger. Audit writes never fail the
// request: errors are logged and dropped.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	log := logger.Get().With(
		"user_id", userID,
		"action", action,
		"resource", resourceType+"/"+resourceID,
	)

	encoded, err := encodeChanges(changes)
	if err != nil {
		log.Warnw("audit change set not encodable, storing without it", "error", err)
	}

	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encoded,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Errorw("audit entry not stored", "error", err)
		return
	}
	log.Debugw("audit entry stored", "audit_id", entry.ID)
}
