package services

import (
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditSplitCreated            = "SPLIT_CREATED"
	AuditSplitUpdated            = "SPLIT_UPDATED"
	AuditContributorUpdated      = "CONTRIBUTOR_UPDATED"
	AuditSplitFinalized          = "SPLIT_FINALIZED"
	AuditSplitDisputed           = "SPLIT_DISPUTED"
	AuditSplitDeleted            = "SPLIT_DELETED"
	AuditDeletionStarted         = "ACCOUNT_DELETION_STARTED"
	AuditDeletionCompleted       = "ACCOUNT_DELETION_COMPLETED"
	AuditDeletionManualReview    = "ACCOUNT_DELETION_NEEDS_MANUAL_REVIEW"
	AuditDeletionCancelled       = "ACCOUNT_DELETION_CANCELLED"
	AuditDeletionEmergencyStop   = "ACCOUNT_DELETION_EMERGENCY_STOP"
	AuditPersonalDataPurgeIntent = "PERSONAL_DATA_PURGE_SCHEDULED"
	AuditInviteRedeemed          = "INVITE_REDEEMED"
)

func writeAudit(tx *gorm.DB, sheetID, userID *string, action string, details map[string]any) error {
	entry := models.AuditLog{
		SplitSheetID: sheetID,
		UserID:       userID,
		Action:       action,
		Details:      models.NewJSON(details),
	}
	return tx.Create(&entry).Error
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
