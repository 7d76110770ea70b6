package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is an account role
type Role string

const (
	RoleArtist Role = "ARTIST"
	RoleLabel  Role = "LABEL"
	RoleAdmin  Role = "ADMIN"
	// RoleDeleted is assigned to soft-deleted accounts
	RoleDeleted Role = "DELETED"
)

// User is the local account row. IDs match the identity provider's user ids.
type User struct {
	ID                 string `gorm:"type:char(36);primaryKey"`
	Email              string `gorm:"size:255;not null"`
	Name               string `gorm:"size:255"`
	Username           string `gorm:"size:255;uniqueIndex"`
	Role               Role   `gorm:"size:16;not null;default:ARTIST"`
	DeletionReason     string `gorm:"size:64"`
	DataRetentionUntil *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// Profile carries the user's affiliations used by notification fan-out
type Profile struct {
	ID          string  `gorm:"type:char(36);primaryKey"`
	UserID      string  `gorm:"type:char(36);uniqueIndex;not null"`
	DisplayName string  `gorm:"size:255"`
	Phone       string  `gorm:"size:64"`
	Bio         string  `gorm:"type:text"`
	PublisherID *string `gorm:"type:char(36);index"`
	ProOrgID    *string `gorm:"type:char(36);index"`
	LabelID     *string `gorm:"type:char(36);index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Publisher is a music publishing company
type Publisher struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

// ProOrg is a performance-rights organization
type ProOrg struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

// Label is a record label
type Label struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

// CurrentUser is the authenticated caller attached to a request
type CurrentUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role
func (u CurrentUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) BeforeCreate(tx *gorm.DB) error      { ensureID(&u.ID); return nil }
func (p *Profile) BeforeCreate(tx *gorm.DB) error   { ensureID(&p.ID); return nil }
func (p *Publisher) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (p *ProOrg) BeforeCreate(tx *gorm.DB) error    { ensureID(&p.ID); return nil }
func (l *Label) BeforeCreate(tx *gorm.DB) error     { ensureID(&l.ID); return nil }
