package models

import (
	"time"

	"gorm.io/gorm"
)

// DeletionStatus is the state of an account deletion job
type DeletionStatus string

const (
	DeletionPending           DeletionStatus = "PENDING"
	DeletionInProgress        DeletionStatus = "IN_PROGRESS"
	DeletionRetrying          DeletionStatus = "RETRYING"
	DeletionCompleted         DeletionStatus = "COMPLETED"
	DeletionNeedsManualReview DeletionStatus = "NEEDS_MANUAL_REVIEW"
	DeletionCancelled         DeletionStatus = "CANCELLED"

	// DeletionFailed is reserved. No operation writes it; exhausted
	// retries escalate to DeletionNeedsManualReview.
	DeletionFailed DeletionStatus = "FAILED"
)

// ActiveDeletionStatuses hold the per-user active slot
var ActiveDeletionStatuses = []DeletionStatus{DeletionPending, DeletionInProgress, DeletionRetrying}

// IsActive reports whether the status still holds the per-user slot
func (s DeletionStatus) IsActive() bool {
	for _, active := range ActiveDeletionStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// DeletionStepName names a pipeline step
type DeletionStepName string

const (
	StepValidateUser    DeletionStepName = "VALIDATE_USER"
	StepBatchProcessing DeletionStepName = "BATCH_PROCESSING"
	StepProviderDelete  DeletionStepName = "SUPABASE_DELETE"
	StepCleanup         DeletionStepName = "CLEANUP"
	StepCompleted       DeletionStepName = "COMPLETED"
)

// DeletionSteps is the fixed step order
var DeletionSteps = []DeletionStepName{
	StepValidateUser,
	StepBatchProcessing,
	StepProviderDelete,
	StepCleanup,
	StepCompleted,
}

// StepStatus is the state of one pipeline step
type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepDone       StepStatus = "COMPLETED"
	StepFailed     StepStatus = "FAILED"
	StepCancelled  StepStatus = "CANCELLED"
	StepSkipped    StepStatus = "SKIPPED"
)

// DeletionJob tracks one asynchronous account deletion run.
// ActiveUserID equals UserID while the job is active and is NULL afterwards;
// a unique index on it allows one active job per user.
type DeletionJob struct {
	ID                      string         `gorm:"type:char(36);primaryKey" json:"-"`
	JobID                   string         `gorm:"size:64;uniqueIndex;not null" json:"jobId"`
	UserID                  string         `gorm:"type:char(36);index;not null" json:"userId"`
	ActiveUserID            *string        `gorm:"type:char(36)" json:"-"`
	Status                  DeletionStatus `gorm:"size:32;not null;index" json:"status"`
	CurrentBatch            int            `gorm:"not null;default:0" json:"currentBatch"`
	TotalBatches            int            `gorm:"not null;default:0" json:"totalBatches"`
	RetryCount              int            `gorm:"not null;default:0" json:"retryCount"`
	FailureReason           string         `gorm:"type:text" json:"failureReason"`
	UserSoftDeletedAt       *time.Time     `json:"-"`
	StartedAt               *time.Time     `json:"startedAt"`
	CompletedAt             *time.Time     `json:"completedAt"`
	CancellationRequestedAt *time.Time     `json:"cancellationRequestedAt"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`

	Steps []DeletionJobStep `gorm:"foreignKey:DeletionJobID" json:"steps"`
}

// Step returns the step with the given name, or nil
func (j *DeletionJob) Step(name DeletionStepName) *DeletionJobStep {
	for i := range j.Steps {
		if j.Steps[i].StepName == name {
			return &j.Steps[i]
		}
	}
	return nil
}

// DeletionJobStep is the audit trail of one step
type DeletionJobStep struct {
	ID             string           `gorm:"type:char(36);primaryKey" json:"-"`
	DeletionJobID  string           `gorm:"type:char(36);index;not null" json:"-"`
	Position       int              `gorm:"not null" json:"position"`
	StepName       DeletionStepName `gorm:"size:32;not null" json:"stepName"`
	Status         StepStatus       `gorm:"size:16;not null" json:"status"`
	StartedAt      *time.Time       `json:"startedAt"`
	CompletedAt    *time.Time       `json:"completedAt"`
	FailureReason  string           `gorm:"type:text" json:"failureReason"`
	RetryCount     int              `gorm:"not null;default:0" json:"retryCount"`
	ItemsProcessed int              `gorm:"not null;default:0" json:"itemsProcessed"`
	TotalItems     int              `gorm:"not null;default:0" json:"totalItems"`
	DurationMs     int64            `gorm:"not null;default:0" json:"durationMs"`
}

func (j *DeletionJob) BeforeCreate(tx *gorm.DB) error     { ensureID(&j.ID); return nil }
func (s *DeletionJobStep) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
