package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType selects the notification template
type NotificationType string

const (
	NotifySplitInvite    NotificationType = "SPLIT_INVITE"
	NotifySplitUpdated   NotificationType = "SPLIT_UPDATED"
	NotifySplitFinalized NotificationType = "SPLIT_FINALIZED"
	NotifySplitDisputed  NotificationType = "SPLIT_DISPUTED"
	NotifySplitReady     NotificationType = "SPLIT_READY"
	NotifyGeneral        NotificationType = "GENERAL"
)

// Notification is a persisted fan-out record. Read only ever goes false to true.
type Notification struct {
	ID           string           `gorm:"type:char(36);primaryKey" json:"id"`
	UserID       string           `gorm:"type:char(36);index;not null" json:"userId"`
	Type         NotificationType `gorm:"size:32;not null" json:"type"`
	Title        string           `gorm:"size:255" json:"title"`
	Message      string           `gorm:"type:text" json:"message"`
	SplitSheetID *string          `gorm:"type:char(36);index" json:"splitSheetId"`
	Read         bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error { ensureID(&n.ID); return nil }
