package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/metrics"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"gorm.io/gorm"
)

const (
	// DeletionBatchSize is the number of rows of each kind handled per batch
	DeletionBatchSize = 50
	// DeletionMaxRetries is the number of attempts allowed after the first failure
	DeletionMaxRetries = 3
	// RetentionPeriod is how long anonymized records are kept before purge
	RetentionPeriod = 90 * 24 * time.Hour
)

// DefaultDeletionBackoff is indexed by retry number
var DefaultDeletionBackoff = []time.Duration{1 * time.Second, 5 * time.Second, 15 * time.Second}

// ErrJobNotClaimable means the job is terminal, or active and owned by a
// live runner.
var ErrJobNotClaimable = errors.New("deletion job is not claimable")

// errJobStopped means the job left the active statuses underneath the runner
var errJobStopped = errors.New("deletion job stopped")

// Pipeline executes account deletion jobs step by step. Every state change is
// written before the next step starts so an interrupted run can resume.
type Pipeline struct {
	DB         *gorm.DB
	Identity   IdentityProvider
	Log        *slog.Logger
	Now        func() time.Time
	Backoff    []time.Duration
	MaxRetries int
	BatchSize  int
	// StaleAfter is how long an active job may go without a write before
	// another runner may claim it.
	StaleAfter time.Duration
}

// NewPipeline returns a pipeline with the standard batch size and retry policy
func NewPipeline(db *gorm.DB, identity IdentityProvider, log *slog.Logger, staleAfter time.Duration) *Pipeline {
	return &Pipeline{
		DB:         db,
		Identity:   identity,
		Log:        log,
		Now:        time.Now,
		Backoff:    DefaultDeletionBackoff,
		MaxRetries: DeletionMaxRetries,
		BatchSize:  DeletionBatchSize,
		StaleAfter: staleAfter,
	}
}

// Run claims and executes one job. A job that is terminal or owned by a live
// runner is skipped without error. Failures are retried with backoff and then
// escalated to NEEDS_MANUAL_REVIEW; they are recorded on the job, not returned.
// Run returns an error only for claim failures and context cancellation.
func (p *Pipeline) Run(ctx context.Context, jobID string) error {
	job, resumed, err := p.claim(ctx, jobID)
	if errors.Is(err, ErrJobNotClaimable) {
		p.Log.Debug("deletion job not claimable", "jobId", jobID)
		return nil
	}
	if err != nil {
		return err
	}

	metrics.DeletionJobsRunning.Inc()
	defer metrics.DeletionJobsRunning.Dec()

	log := p.Log.With("jobId", job.JobID, "userId", job.UserID)
	log.Info("deletion job started", "resumed", resumed, "retryCount", job.RetryCount)

	for {
		err := p.attempt(ctx, job, resumed)
		if err == nil {
			log.Info("deletion job completed")
			return nil
		}
		if errors.Is(err, errJobStopped) {
			log.Info("deletion job stopped externally")
			return nil
		}
		if ctx.Err() != nil {
			// Left active; the next claim after StaleAfter resumes it.
			return ctx.Err()
		}

		metrics.DeletionAttemptFailures.Inc()
		retry, ferr := p.recordFailure(ctx, job, err)
		if errors.Is(ferr, errJobStopped) {
			return nil
		}
		if ferr != nil {
			return fmt.Errorf("record deletion failure: %w", ferr)
		}
		if retry == 0 {
			log.Error("deletion job needs manual review", "error", err)
			return nil
		}

		wait := p.backoff(retry)
		log.Warn("deletion attempt failed, retrying", "error", err, "retry", retry, "backoff", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := p.restart(ctx, job); err != nil {
			if errors.Is(err, errJobStopped) {
				return nil
			}
			return fmt.Errorf("restart deletion job: %w", err)
		}
		resumed = false
	}
}

func (p *Pipeline) backoff(retry int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if retry > len(p.Backoff) {
		retry = len(p.Backoff)
	}
	return p.Backoff[retry-1]
}

// claim moves a PENDING job to IN_PROGRESS, or takes over an active job whose
// last write is older than StaleAfter. resumed reports the latter.
func (p *Pipeline) claim(ctx context.Context, jobID string) (*models.DeletionJob, bool, error) {
	db := p.DB.WithContext(ctx)
	var before models.DeletionJob
	if err := db.Where("job_id = ?", jobID).First(&before).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrJobNotClaimable
		}
		return nil, false, err
	}

	now := p.Now()
	res := db.Model(&models.DeletionJob{}).
		Where("id = ? AND (status = ? OR (status IN ? AND updated_at < ?))",
			before.ID,
			models.DeletionPending,
			[]models.DeletionStatus{models.DeletionInProgress, models.DeletionRetrying},
			now.Add(-p.StaleAfter)).
		Updates(map[string]any{
			"status":     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.DeletionPending, models.DeletionInProgress),
			"started_at": gorm.Expr("COALESCE(started_at, ?)", now),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, ErrJobNotClaimable
	}

	job, err := loadJob(db, jobID, false)
	if err != nil {
		return nil, false, err
	}
	return job, before.Status != models.DeletionPending, nil
}

// attempt runs the steps in order. When resuming, steps that already
// finished are skipped and batch processing continues from CurrentBatch.
func (p *Pipeline) attempt(ctx context.Context, job *models.DeletionJob, resume bool) error {
	for _, name := range models.DeletionSteps {
		step := job.Step(name)
		if step == nil {
			return fmt.Errorf("deletion job %s has no %s step", job.JobID, name)
		}
		if resume && (step.Status == models.StepDone || step.Status == models.StepSkipped) {
			continue
		}

		var err error
		switch name {
		case models.StepValidateUser:
			err = p.runStep(ctx, job, step, p.validateUser)
		case models.StepBatchProcessing:
			err = p.runStep(ctx, job, step, p.processBatches)
		case models.StepProviderDelete:
			err = p.runStep(ctx, job, step, p.deleteIdentity)
		case models.StepCleanup:
			err = p.runStep(ctx, job, step, p.cleanup)
		case models.StepCompleted:
			err = p.complete(ctx, job, step)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type stepFunc func(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error

// runStep brackets fn with IN_PROGRESS and COMPLETED writes. fn may set the
// step to SKIPPED and fill in item counts and a failure reason.
func (p *Pipeline) runStep(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep, fn stepFunc) error {
	started := p.Now()
	err := p.guard(ctx, job, func(tx *gorm.DB) error {
		return tx.Model(&models.DeletionJobStep{}).Where("id = ?", step.ID).Updates(map[string]any{
			"status":          models.StepInProgress,
			"started_at":      started,
			"completed_at":    nil,
			"items_processed": 0,
			"total_items":     0,
		}).Error
	})
	if err != nil {
		return err
	}
	step.Status = models.StepInProgress
	step.StartedAt = &started
	step.ItemsProcessed = 0
	step.TotalItems = 0

	if err := fn(ctx, job, step); err != nil {
		if errors.Is(err, errJobStopped) {
			return err
		}
		return fmt.Errorf("%s: %w", step.StepName, err)
	}

	finished := p.Now()
	status := step.Status
	if status == models.StepInProgress {
		status = models.StepDone
	}
	err = p.guard(ctx, job, func(tx *gorm.DB) error {
		return tx.Model(&models.DeletionJobStep{}).
			Where("id = ? AND status = ?", step.ID, models.StepInProgress).
			Updates(map[string]any{
				"status":          status,
				"completed_at":    finished,
				"duration_ms":     finished.Sub(started).Milliseconds(),
				"items_processed": step.ItemsProcessed,
				"total_items":     step.TotalItems,
				"failure_reason":  step.FailureReason,
			}).Error
	})
	if err != nil {
		return err
	}
	step.Status = status
	step.CompletedAt = &finished
	return nil
}

// guard runs fn in a transaction holding the job row, refusing to write once
// the job has been cancelled or escalated. Every guarded write refreshes
// updated_at, which doubles as the runner's heartbeat.
func (p *Pipeline) guard(ctx context.Context, job *models.DeletionJob, fn func(tx *gorm.DB) error) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.DeletionJob
		if err := lockForUpdate(tx).Select("id", "status").Where("id = ?", job.ID).First(&current).Error; err != nil {
			return err
		}
		if current.Status != models.DeletionInProgress && current.Status != models.DeletionRetrying {
			return errJobStopped
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Update("updated_at", p.Now()).Error
	})
}

func (p *Pipeline) validateUser(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error {
	db := p.DB.WithContext(ctx)

	var user models.User
	if err := db.Unscoped().Where("id = ?", job.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s not found", job.UserID)
		}
		return err
	}
	// A retry of this job may find the user already soft-deleted by its own first batch.
	if user.DeletedAt.Valid && job.UserSoftDeletedAt == nil {
		return fmt.Errorf("user %s is already deleted", job.UserID)
	}

	counts := []struct {
		model  any
		column string
		n      int64
	}{
		{model: &models.Profile{}, column: "user_id"},
		{model: &models.Contributor{}, column: "user_id"},
		{model: &models.Signature{}, column: "user_id"},
		{model: &models.SplitSheet{}, column: "created_by"},
	}
	total := 0
	for i := range counts {
		if err := db.Unscoped().Model(counts[i].model).
			Where(counts[i].column+" = ?", job.UserID).
			Count(&counts[i].n).Error; err != nil {
			return err
		}
		total += int(counts[i].n)
	}
	sheets := int(counts[3].n)
	totalBatches := (sheets + p.BatchSize - 1) / p.BatchSize

	step.TotalItems = total
	step.ItemsProcessed = total

	err := p.guard(ctx, job, func(tx *gorm.DB) error {
		return tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"total_batches": totalBatches,
			"current_batch": 0,
		}).Error
	})
	if err != nil {
		return err
	}
	job.TotalBatches = totalBatches
	job.CurrentBatch = 0

	p.Log.Info("deletion validated",
		"jobId", job.JobID,
		"profiles", counts[0].n,
		"contributors", counts[1].n,
		"signatures", counts[2].n,
		"splitSheets", sheets,
		"totalBatches", totalBatches,
	)
	return nil
}

func (p *Pipeline) processBatches(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error {
	if job.TotalBatches == 0 {
		// Nothing created by the user: soft-delete directly without a batch loop.
		return p.guard(ctx, job, func(tx *gorm.DB) error {
			n, err := p.anonymize(tx, job, -1)
			step.ItemsProcessed += n
			step.TotalItems = step.ItemsProcessed
			return err
		})
	}

	step.TotalItems = job.TotalBatches
	for batch := job.CurrentBatch; batch < job.TotalBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		limit := p.BatchSize
		if batch == job.TotalBatches-1 {
			limit = -1
		}
		err := p.guard(ctx, job, func(tx *gorm.DB) error {
			if _, err := p.anonymize(tx, job, limit); err != nil {
				return err
			}
			return tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Update("current_batch", batch+1).Error
		})
		if err != nil {
			return err
		}
		job.CurrentBatch = batch + 1
		step.ItemsProcessed = job.CurrentBatch
		p.Log.Debug("deletion batch processed", "jobId", job.JobID, "batch", batch+1, "of", job.TotalBatches)
	}
	return nil
}

// anonymize soft-deletes the user and profile once, then detaches up to limit
// created sheets, contributor rows and signatures (all when limit < 0).
// Signatures keep everything except the user link.
func (p *Pipeline) anonymize(tx *gorm.DB, job *models.DeletionJob, limit int) (int, error) {
	processed := 0
	if job.UserSoftDeletedAt == nil {
		now := p.Now()
		if err := softDeleteUser(tx, job.UserID, now); err != nil {
			return processed, err
		}
		if err := tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Update("user_soft_deleted_at", now).Error; err != nil {
			return processed, err
		}
		job.UserSoftDeletedAt = &now
		processed++
	}

	n, err := detach(tx, &models.SplitSheet{}, "created_by", job.UserID, limit, map[string]any{"created_by": nil})
	processed += n
	if err != nil {
		return processed, err
	}
	n, err = detach(tx, &models.Contributor{}, "user_id", job.UserID, limit, map[string]any{
		"user_id": nil,
		"email":   "",
		"phone":   "",
		"address": "",
	})
	processed += n
	if err != nil {
		return processed, err
	}
	n, err = detach(tx, &models.Signature{}, "user_id", job.UserID, limit, map[string]any{"user_id": nil})
	processed += n
	return processed, err
}

// detach selects ids first and updates by id; MySQL rejects LIMIT inside IN subqueries.
func detach(tx *gorm.DB, model any, column, userID string, limit int, updates map[string]any) (int, error) {
	var ids []string
	query := tx.Model(model).Where(column+" = ?", userID).Order("id")
	if limit >= 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Model(model).Where("id IN ?", ids).Updates(updates)
	return int(res.RowsAffected), res.Error
}

func softDeleteUser(tx *gorm.DB, userID string, now time.Time) error {
	retainUntil := now.Add(RetentionPeriod)
	res := tx.Unscoped().Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"name":                 "Deleted User",
		"email":                "deleted+" + userID + "@deleted.invalid",
		"username":             "deleted_" + userID,
		"role":                 models.RoleDeleted,
		"deletion_reason":      "USER_REQUESTED",
		"data_retention_until": retainUntil,
		"deleted_at":           now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return tx.Unscoped().Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]any{
		"display_name": "Deleted User",
		"phone":        "",
		"bio":          "",
		"deleted_at":   now,
	}).Error
}

// deleteIdentity is best effort: a provider failure is recorded on the step
// and the job carries on.
func (p *Pipeline) deleteIdentity(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error {
	step.TotalItems = 1
	if p.Identity == nil {
		step.Status = models.StepSkipped
		step.FailureReason = "no identity provider configured"
		return nil
	}
	if err := p.Identity.DeleteUser(ctx, job.UserID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.Log.Warn("identity provider delete failed; continuing", "jobId", job.JobID, "userId", job.UserID, "error", err)
		step.Status = models.StepSkipped
		step.FailureReason = err.Error()
		return nil
	}
	step.ItemsProcessed = 1
	return nil
}

// cleanup records when the retained personal data becomes purgeable. No purge
// is scheduled here.
func (p *Pipeline) cleanup(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error {
	purgeAfter := p.Now().Add(RetentionPeriod)
	step.TotalItems = 1
	return p.guard(ctx, job, func(tx *gorm.DB) error {
		if err := writeAudit(tx, nil, strPtr(job.UserID), AuditPersonalDataPurgeIntent, map[string]any{
			"jobId":      job.JobID,
			"purgeAfter": purgeAfter.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
		step.ItemsProcessed = 1
		return nil
	})
}

// complete finishes the COMPLETED step and the job in one transaction
func (p *Pipeline) complete(ctx context.Context, job *models.DeletionJob, step *models.DeletionJobStep) error {
	now := p.Now()
	err := p.guard(ctx, job, func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeletionJobStep{}).Where("id = ?", step.ID).Updates(map[string]any{
			"status":       models.StepDone,
			"started_at":   now,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":         models.DeletionCompleted,
			"active_user_id": nil,
			"completed_at":   now,
			"current_batch":  job.TotalBatches,
		}).Error; err != nil {
			return err
		}
		return writeAudit(tx, nil, strPtr(job.UserID), AuditDeletionCompleted, map[string]any{
			"jobId":        job.JobID,
			"totalBatches": job.TotalBatches,
			"retryCount":   job.RetryCount,
		})
	})
	if err != nil {
		return err
	}
	job.Status = models.DeletionCompleted
	job.CompletedAt = &now
	step.Status = models.StepDone
	metrics.DeletionJobsFinished.WithLabelValues(string(models.DeletionCompleted)).Inc()
	return nil
}

// recordFailure stores the failure and returns the retry number to run next,
// or 0 once retries are exhausted and the job has been escalated.
func (p *Pipeline) recordFailure(ctx context.Context, job *models.DeletionJob, cause error) (int, error) {
	failures := job.RetryCount + 1
	escalate := failures > p.MaxRetries
	now := p.Now()

	err := p.guard(ctx, job, func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeletionJobStep{}).
			Where("deletion_job_id = ? AND status = ?", job.ID, models.StepInProgress).
			Updates(map[string]any{
				"status":         models.StepFailed,
				"completed_at":   now,
				"failure_reason": cause.Error(),
				"retry_count":    gorm.Expr("retry_count + 1"),
			}).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"retry_count":    failures,
			"failure_reason": cause.Error(),
		}
		if escalate {
			updates["status"] = models.DeletionNeedsManualReview
			updates["active_user_id"] = nil
			updates["completed_at"] = now
		} else {
			updates["status"] = models.DeletionRetrying
		}
		if err := tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return err
		}
		if escalate {
			return writeAudit(tx, nil, strPtr(job.UserID), AuditDeletionManualReview, map[string]any{
				"jobId":      job.JobID,
				"retryCount": failures,
				"reason":     cause.Error(),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	job.RetryCount = failures
	job.FailureReason = cause.Error()
	if escalate {
		job.Status = models.DeletionNeedsManualReview
		metrics.DeletionJobsFinished.WithLabelValues(string(models.DeletionNeedsManualReview)).Inc()
		return 0, nil
	}
	job.Status = models.DeletionRetrying
	return failures, nil
}

// restart resets the steps so the next attempt starts from VALIDATE_USER
func (p *Pipeline) restart(ctx context.Context, job *models.DeletionJob) error {
	err := p.guard(ctx, job, func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeletionJobStep{}).Where("deletion_job_id = ?", job.ID).Updates(map[string]any{
			"status":          models.StepPending,
			"started_at":      nil,
			"completed_at":    nil,
			"items_processed": 0,
			"total_items":     0,
			"duration_ms":     0,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"current_batch": 0,
			"total_batches": 0,
		}).Error
	})
	if err != nil {
		return err
	}

	fresh, err := loadJob(p.DB.WithContext(ctx), job.JobID, false)
	if err != nil {
		return err
	}
	*job = *fresh
	return nil
}
