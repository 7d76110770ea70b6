package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SplitStatus is the lifecycle state of a split sheet
type SplitStatus string

const (
	StatusPending  SplitStatus = "PENDING"
	StatusSigned   SplitStatus = "SIGNED"
	StatusDisputed SplitStatus = "DISPUTED"

	// DRAFT, PUBLISHED and REVERSED are reserved. No operation moves a
	// sheet into or out of them.
	StatusDraft     SplitStatus = "DRAFT"
	StatusPublished SplitStatus = "PUBLISHED"
	StatusReversed  SplitStatus = "REVERSED"
)

// ContributorType separates the writer half from the producer half
type ContributorType string

const (
	ContributorWriter   ContributorType = "WRITER"
	ContributorProducer ContributorType = "PRODUCER"
)

// Song owns one or more split sheets
type Song struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Title        string    `gorm:"size:255" json:"finalTitle"`
	WorkingTitle string    `gorm:"size:255" json:"workingTitle"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayTitle prefers the final title
func (s Song) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.WorkingTitle
}

// SplitSheet is one song's ownership agreement
type SplitSheet struct {
	ID              string          `gorm:"type:char(36);primaryKey" json:"id"`
	SongID          string          `gorm:"type:char(36);index;not null" json:"songId"`
	CreatedBy       *string         `gorm:"type:char(36);index" json:"createdBy"`
	Version         int             `gorm:"not null;default:1" json:"version"`
	AgreementDate   time.Time       `json:"agreementDate"`
	Status          SplitStatus     `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	TotalPercentage decimal.Decimal `gorm:"type:decimal(7,3);not null;default:0" json:"totalPercentage"`
	Clauses         string          `gorm:"type:text" json:"clauses"`
	DisputedBy      *string         `gorm:"type:char(36)" json:"disputedBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Song         Song          `gorm:"foreignKey:SongID" json:"song"`
	Contributors []Contributor `gorm:"foreignKey:SplitSheetID" json:"contributors"`
}

// IsCreator reports whether userID created the sheet
func (s *SplitSheet) IsCreator(userID string) bool {
	return s.CreatedBy != nil && *s.CreatedBy == userID
}

// Contributor is a single party's stake in a split sheet
type Contributor struct {
	ID              string          `gorm:"type:char(36);primaryKey" json:"id"`
	SplitSheetID    string          `gorm:"type:char(36);index;not null" json:"splitSheetId"`
	UserID          *string         `gorm:"type:char(36);index" json:"userId"`
	LegalName       string          `gorm:"size:255" json:"legalName"`
	StageName       string          `gorm:"size:255" json:"stageName"`
	Role            string          `gorm:"size:64" json:"role"`
	ContributorType ContributorType `gorm:"size:16;not null" json:"contributorType"`
	Percentage      decimal.Decimal `gorm:"type:decimal(7,3);not null;default:0" json:"percentage"`
	ProAffiliation  string          `gorm:"size:64" json:"proAffiliation"`
	IPINumber       string          `gorm:"size:32" json:"ipiNumber"`
	PublisherName   string          `gorm:"size:255" json:"publisherName"`
	PublisherIPI    string          `gorm:"size:32" json:"publisherIpi"`
	PublisherID     *string         `gorm:"type:char(36);index" json:"publisherId"`
	ProOrgID        *string         `gorm:"type:char(36);index" json:"proOrgId"`
	LabelID         *string         `gorm:"type:char(36);index" json:"labelId"`
	Email           string          `gorm:"size:255" json:"email"`
	Phone           string          `gorm:"size:64" json:"phone"`
	Address         string          `gorm:"type:text" json:"address"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// IsLinkedTo reports whether the row belongs to userID
func (c *Contributor) IsLinkedTo(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

// Signature is a legally retained record; rows are unlinked, never deleted, on account deletion
type Signature struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	SplitSheetID  string    `gorm:"type:char(36);index;not null" json:"splitSheetId"`
	ContributorID *string   `gorm:"type:char(36)" json:"contributorId"`
	UserID        *string   `gorm:"type:char(36);index" json:"userId"`
	SignatureData string    `gorm:"type:text" json:"signatureData"`
	SignedAt      time.Time `json:"signedAt"`
	IPAddress     string    `gorm:"size:64" json:"ipAddress"`
}

// AuditLog records sheet and account events
type AuditLog struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	SplitSheetID *string   `gorm:"type:char(36);index" json:"splitSheetId"`
	UserID       *string   `gorm:"type:char(36);index" json:"userId"`
	Action       string    `gorm:"size:64;not null" json:"action"`
	Details      JSON      `json:"details"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Song) BeforeCreate(tx *gorm.DB) error        { ensureID(&s.ID); return nil }
func (s *SplitSheet) BeforeCreate(tx *gorm.DB) error  { ensureID(&s.ID); return nil }
func (c *Contributor) BeforeCreate(tx *gorm.DB) error { ensureID(&c.ID); return nil }
func (s *Signature) BeforeCreate(tx *gorm.DB) error   { ensureID(&s.ID); return nil }
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error    { ensureID(&a.ID); return nil }
