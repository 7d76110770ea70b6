package models

import (
	"time"

	"gorm.io/gorm"
)

// InviteCode is a one-time role upgrade token
type InviteCode struct {
	ID        string     `gorm:"type:char(36);primaryKey" json:"id"`
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Role      Role       `gorm:"size:16;not null" json:"role"`
	CreatedBy string     `gorm:"type:char(36)" json:"createdBy"`
	UsedBy    *string    `gorm:"type:char(36)" json:"usedBy"`
	UsedAt    *time.Time `json:"usedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (i *InviteCode) BeforeCreate(tx *gorm.DB) error { ensureID(&i.ID); return nil }
