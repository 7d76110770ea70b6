package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/metrics"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	// DeletionConfirmation must be typed by the user to start a deletion
	DeletionConfirmation = "DELETE"
	// CancellationWindow bounds how long after start a job can be cancelled
	CancellationWindow = 30 * time.Second
	// MinutesPerBatch feeds the remaining-time estimate
	MinutesPerBatch = 0.5
)

// DeletionRequest is the body of POST /profiles/delete-account
type DeletionRequest struct {
	UserID       string `json:"userId"`
	Confirmation string `json:"confirmation"`
}

// DeletionProgress is the polling snapshot of a job
type DeletionProgress struct {
	JobID                     string                   `json:"jobId"`
	Status                    models.DeletionStatus    `json:"status"`
	CurrentBatch              int                      `json:"currentBatch"`
	TotalBatches              int                      `json:"totalBatches"`
	CurrentStep               models.DeletionStepName  `json:"currentStep"`
	ProgressPercentage        int                      `json:"progressPercentage"`
	EstimatedMinutesRemaining int                      `json:"estimatedMinutesRemaining"`
	RetryCount                int                      `json:"retryCount"`
	Error                     string                   `json:"error,omitempty"`
	StartedAt                 *time.Time               `json:"startedAt"`
	CompletedAt               *time.Time               `json:"completedAt"`
	Steps                     []models.DeletionJobStep `json:"steps"`
}

var stepProgress = map[models.DeletionStepName]int{
	models.StepValidateUser:    5,
	models.StepBatchProcessing: 10,
	models.StepProviderDelete:  95,
	models.StepCleanup:         98,
	models.StepCompleted:       100,
}

// DeletionService admits, reports on and stops account deletion jobs.
// The work itself is done by Pipeline.
type DeletionService struct {
	DB    *gorm.DB
	Queue jobqueue.Queue
	Log   *slog.Logger
	Now   func() time.Time
}

// NewDeletionService wires a deletion service
func NewDeletionService(db *gorm.DB, queue jobqueue.Queue, log *slog.Logger) *DeletionService {
	return &DeletionService{DB: db, Queue: queue, Log: log, Now: time.Now}
}

// RequestDeletion creates a job with its placeholder steps and enqueues it
func (s *DeletionService) RequestDeletion(ctx context.Context, actor models.CurrentUser, req DeletionRequest) (*models.DeletionJob, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, types.NewForbiddenError("you can only delete your own account")
	}
	if req.Confirmation != DeletionConfirmation {
		return nil, types.NewValidationError("confirmation must be %q", DeletionConfirmation)
	}

	job := models.DeletionJob{
		JobID:        models.NewID(),
		UserID:       userID,
		ActiveUserID: &userID,
		Status:       models.DeletionPending,
	}
	for i, name := range models.DeletionSteps {
		job.Steps = append(job.Steps, models.DeletionJobStep{
			Position: i,
			StepName: name,
			Status:   models.StepPending,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("user %s not found", userID)
			}
			return err
		}

		var active int64
		if err := tx.Model(&models.DeletionJob{}).
			Where("user_id = ? AND status IN ?", userID, models.ActiveDeletionStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return types.NewConflictError("an account deletion is already in progress")
		}

		if err := tx.Create(&job).Error; err != nil {
			// The active-job index catches a concurrent request the count missed.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.NewConflictError("an account deletion is already in progress")
			}
			return err
		}
		return writeAudit(tx, nil, strPtr(userID), AuditDeletionStarted, map[string]any{
			"jobId":       job.JobID,
			"requestedBy": actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, job.JobID); err != nil {
			// The worker's resume scan picks up PENDING jobs that never made it onto the queue.
			s.Log.Warn("enqueue deletion job failed", "jobId", job.JobID, "error", err)
		}
	}
	s.Log.Info("account deletion requested", "jobId", job.JobID, "userId", userID, "requestedBy", actor.ID)
	return &job, nil
}

// Progress returns a derived progress snapshot for the job's owner or an admin
func (s *DeletionService) Progress(ctx context.Context, actor models.CurrentUser, jobID string) (*DeletionProgress, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != actor.ID && !actor.IsAdmin() {
		return nil, types.NewForbiddenError("you do not have access to this deletion job")
	}
	progress := ComputeProgress(job)
	return &progress, nil
}

// ComputeProgress derives the current step, percentage and estimate from a
// job whose Steps are loaded in position order.
func ComputeProgress(job *models.DeletionJob) DeletionProgress {
	p := DeletionProgress{
		JobID:        job.JobID,
		Status:       job.Status,
		CurrentBatch: job.CurrentBatch,
		TotalBatches: job.TotalBatches,
		RetryCount:   job.RetryCount,
		Error:        job.FailureReason,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		Steps:        job.Steps,
	}

	p.CurrentStep = currentStep(job.Steps)
	p.ProgressPercentage = stepProgress[p.CurrentStep]
	if p.CurrentStep == models.StepBatchProcessing && job.TotalBatches > 0 {
		batch := float64(job.CurrentBatch) / float64(job.TotalBatches)
		if batch > 1 {
			batch = 1
		}
		p.ProgressPercentage = 10 + int(85*batch)
	}
	if job.Status == models.DeletionCompleted {
		p.ProgressPercentage = 100
	}

	remaining := math.Ceil(float64(job.TotalBatches-job.CurrentBatch) * MinutesPerBatch)
	p.EstimatedMinutesRemaining = int(math.Max(0, remaining))
	return p
}

func currentStep(steps []models.DeletionJobStep) models.DeletionStepName {
	for _, st := range steps {
		if st.Status == models.StepInProgress {
			return st.StepName
		}
	}
	for _, st := range steps {
		if st.Status == models.StepPending {
			return st.StepName
		}
	}
	if len(steps) == 0 {
		return models.StepValidateUser
	}
	return steps[len(steps)-1].StepName
}

// Cancel stops a job while it is still validating and no more than
// CancellationWindow has passed since it started.
func (s *DeletionService) Cancel(ctx context.Context, actor models.CurrentUser, jobID string) (*models.DeletionJob, error) {
	now := s.Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := loadJob(tx, jobID, true)
		if err != nil {
			return err
		}
		if job.UserID != actor.ID && !actor.IsAdmin() {
			return types.NewForbiddenError("you do not have access to this deletion job")
		}
		if job.StartedAt == nil || now.Sub(*job.StartedAt) > CancellationWindow {
			return types.NewValidationError("deletion can only be cancelled within %d seconds of starting", int(CancellationWindow.Seconds()))
		}
		validate := job.Step(models.StepValidateUser)
		if job.Status != models.DeletionInProgress || validate == nil || validate.Status != models.StepInProgress {
			return types.NewValidationError("deletion has progressed too far to cancel")
		}

		res := tx.Model(&models.DeletionJob{}).
			Where("id = ? AND status = ?", job.ID, models.DeletionInProgress).
			Updates(map[string]any{
				"status":                    models.DeletionCancelled,
				"active_user_id":            nil,
				"cancellation_requested_at": now,
				"completed_at":              now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewValidationError("deletion has progressed too far to cancel")
		}
		if err := tx.Model(&models.DeletionJobStep{}).Where("id = ?", validate.ID).Updates(map[string]any{
			"status":       models.StepCancelled,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}
		return writeAudit(tx, nil, strPtr(job.UserID), AuditDeletionCancelled, map[string]any{
			"jobId":       job.JobID,
			"cancelledBy": actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.DeletionJobsFinished.WithLabelValues(string(models.DeletionCancelled)).Inc()
	s.Log.Info("account deletion cancelled", "jobId", jobID, "by", actor.ID)
	return s.load(ctx, jobID)
}

// EmergencyStop flips any active job to CANCELLED regardless of step. A
// running pipeline observes the change at its next step or batch boundary.
func (s *DeletionService) EmergencyStop(ctx context.Context, actorID, jobID, reason string) (*models.DeletionJob, error) {
	now := s.Now()
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "emergency stop"
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := loadJob(tx, jobID, true)
		if err != nil {
			return err
		}
		if !job.Status.IsActive() {
			return types.NewValidationError("deletion job is %s and cannot be stopped", job.Status)
		}
		if err := tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":                    models.DeletionCancelled,
			"active_user_id":            nil,
			"cancellation_requested_at": now,
			"completed_at":              now,
			"failure_reason":            reason,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DeletionJobStep{}).
			Where("deletion_job_id = ? AND status IN ?", job.ID, []models.StepStatus{models.StepPending, models.StepInProgress}).
			Updates(map[string]any{"status": models.StepCancelled, "completed_at": now}).Error; err != nil {
			return err
		}
		return writeAudit(tx, nil, strPtr(job.UserID), AuditDeletionEmergencyStop, map[string]any{
			"jobId":     job.JobID,
			"stoppedBy": actorID,
			"reason":    reason,
			"from":      job.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.DeletionJobsFinished.WithLabelValues(string(models.DeletionCancelled)).Inc()
	s.Log.Warn("account deletion emergency stop", "jobId", jobID, "by", actorID, "reason", reason)
	return s.load(ctx, jobID)
}

// SweepStuck escalates IN_PROGRESS and RETRYING jobs that have not been
// touched since olderThan ago to NEEDS_MANUAL_REVIEW.
func (s *DeletionService) SweepStuck(ctx context.Context, olderThan time.Duration) ([]models.DeletionJob, error) {
	now := s.Now()
	cutoff := now.Add(-olderThan)

	var stuck []models.DeletionJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(hints.CommentBefore("select", "sweep_stuck_deletion_jobs")).
			Where("status IN ? AND updated_at < ?",
				[]models.DeletionStatus{models.DeletionInProgress, models.DeletionRetrying}, cutoff).
			Order("updated_at").
			Find(&stuck).Error; err != nil {
			return err
		}
		for i := range stuck {
			job := &stuck[i]
			reason := fmt.Sprintf("no progress since %s", job.UpdatedAt.UTC().Format(time.RFC3339))
			res := tx.Model(&models.DeletionJob{}).
				Where("id = ? AND status = ?", job.ID, job.Status).
				Updates(map[string]any{
					"status":         models.DeletionNeedsManualReview,
					"active_user_id": nil,
					"failure_reason": reason,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := writeAudit(tx, nil, strPtr(job.UserID), AuditDeletionManualReview, map[string]any{
				"jobId":  job.JobID,
				"reason": reason,
				"sweep":  true,
			}); err != nil {
				return err
			}
			job.Status = models.DeletionNeedsManualReview
			job.FailureReason = reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, job := range stuck {
		if job.Status == models.DeletionNeedsManualReview {
			metrics.DeletionJobsFinished.WithLabelValues(string(models.DeletionNeedsManualReview)).Inc()
			s.Log.Warn("stuck deletion job escalated", "jobId", job.JobID, "userId", job.UserID)
		}
	}
	return stuck, nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (s *DeletionService) ListJobs(ctx context.Context, statuses []models.DeletionStatus, limit int) ([]models.DeletionJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var jobs []models.DeletionJob
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ActiveJobIDs lists the tokens of every job still holding its user's slot
func (s *DeletionService) ActiveJobIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.DeletionJob{}).
		Where("status IN ?", models.ActiveDeletionStatuses).
		Order("created_at").
		Pluck("job_id", &ids).Error
	return ids, err
}

func (s *DeletionService) load(ctx context.Context, jobID string) (*models.DeletionJob, error) {
	return loadJob(s.DB.WithContext(ctx), jobID, false)
}

func loadJob(db *gorm.DB, jobID string, forUpdate bool) (*models.DeletionJob, error) {
	query := db
	if forUpdate {
		query = lockForUpdate(query)
	}
	var job models.DeletionJob
	err := query.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("job_id = ?", jobID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("deletion job %s not found", jobID)
		}
		return nil, err
	}
	return &job, nil
}
