package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
	"gorm.io/gorm"
)

func newDeletionService(t *testing.T) (*services.DeletionService, *jobqueue.MemoryQueue) {
	t.Helper()
	q := jobqueue.NewMemoryQueue(10)
	t.Cleanup(func() { q.Close() })
	return services.NewDeletionService(testsupport.NewDB(t), q, logging.NewNop()), q
}

func requestDeletion(t *testing.T, svc *services.DeletionService, user models.User) *models.DeletionJob {
	t.Helper()
	job, err := svc.RequestDeletion(context.Background(), testsupport.Current(user), services.DeletionRequest{
		Confirmation: services.DeletionConfirmation,
	})
	if err != nil {
		t.Fatalf("RequestDeletion failed: %v", err)
	}
	return job
}

// startJob puts a job in the state a runner leaves it in while validating
func startJob(t *testing.T, db *gorm.DB, job *models.DeletionJob, startedAt time.Time, step models.DeletionStepName) {
	t.Helper()
	if err := db.Model(&models.DeletionJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"status":     models.DeletionInProgress,
		"started_at": startedAt,
	}).Error; err != nil {
		t.Fatalf("Failed to start job: %v", err)
	}
	if err := db.Model(&models.DeletionJobStep{}).
		Where("deletion_job_id = ? AND step_name = ?", job.ID, step).
		Update("status", models.StepInProgress).Error; err != nil {
		t.Fatalf("Failed to start step: %v", err)
	}
}

func loadJob(t *testing.T, db *gorm.DB, jobID string) models.DeletionJob {
	t.Helper()
	var job models.DeletionJob
	err := db.Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("job_id = ?", jobID).First(&job).Error
	if err != nil {
		t.Fatalf("Failed to load job %s: %v", jobID, err)
	}
	return job
}

func TestRequestDeletion(t *testing.T) {
	svc, q := newDeletionService(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)

	job := requestDeletion(t, svc, user)
	if job.Status != models.DeletionPending || job.JobID == "" {
		t.Errorf("unexpected job: %+v", job)
	}
	if len(job.Steps) != len(models.DeletionSteps) {
		t.Fatalf("expected %d steps, got %d", len(models.DeletionSteps), len(job.Steps))
	}
	for i, step := range job.Steps {
		if step.StepName != models.DeletionSteps[i] || step.Status != models.StepPending || step.Position != i {
			t.Errorf("step %d: unexpected %+v", i, step)
		}
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Errorf("expected the job to be enqueued, queue has %d", n)
	}
	if n := testsupport.Count(t, svc.DB, &models.AuditLog{}, "user_id = ? AND action = ?", user.ID, services.AuditDeletionStarted); n != 1 {
		t.Errorf("expected one start audit, got %d", n)
	}

	_, err := svc.RequestDeletion(ctx, testsupport.Current(user), services.DeletionRequest{Confirmation: services.DeletionConfirmation})
	assertCode(t, err, 409)
}

func TestRequestDeletionRejections(t *testing.T) {
	svc, _ := newDeletionService(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	other := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	admin := testsupport.CreateUser(t, svc.DB, models.RoleAdmin)

	tests := []struct {
		name  string
		actor models.User
		req   services.DeletionRequest
		code  int
	}{
		{"missing confirmation", user, services.DeletionRequest{}, 400},
		{"wrong confirmation", user, services.DeletionRequest{Confirmation: "delete"}, 400},
		{"someone else", user, services.DeletionRequest{UserID: other.ID, Confirmation: "DELETE"}, 403},
		{"unknown user", admin, services.DeletionRequest{UserID: models.NewID(), Confirmation: "DELETE"}, 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RequestDeletion(ctx, testsupport.Current(tt.actor), tt.req)
			assertCode(t, err, tt.code)
		})
	}

	job, err := svc.RequestDeletion(ctx, testsupport.Current(admin), services.DeletionRequest{UserID: other.ID, Confirmation: "DELETE"})
	if err != nil {
		t.Fatalf("admin should request deletion for another user: %v", err)
	}
	if job.UserID != other.ID {
		t.Errorf("expected job for %s, got %s", other.ID, job.UserID)
	}
}

func TestDeletionProgress(t *testing.T) {
	svc, _ := newDeletionService(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	other := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	admin := testsupport.CreateUser(t, svc.DB, models.RoleAdmin)
	job := requestDeletion(t, svc, user)

	progress, err := svc.Progress(ctx, testsupport.Current(user), job.JobID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.CurrentStep != models.StepValidateUser || progress.ProgressPercentage != 5 {
		t.Errorf("unexpected progress: %+v", progress)
	}
	if _, err := svc.Progress(ctx, testsupport.Current(admin), job.JobID); err != nil {
		t.Errorf("admin should read progress: %v", err)
	}
	_, err = svc.Progress(ctx, testsupport.Current(other), job.JobID)
	assertCode(t, err, 403)
	_, err = svc.Progress(ctx, testsupport.Current(user), "missing")
	assertCode(t, err, 404)
}

func TestComputeProgress(t *testing.T) {
	steps := func(statuses ...models.StepStatus) []models.DeletionJobStep {
		out := make([]models.DeletionJobStep, len(models.DeletionSteps))
		for i, name := range models.DeletionSteps {
			out[i] = models.DeletionJobStep{Position: i, StepName: name, Status: models.StepPending}
			if i < len(statuses) {
				out[i].Status = statuses[i]
			}
		}
		return out
	}

	tests := []struct {
		name     string
		job      models.DeletionJob
		step     models.DeletionStepName
		percent  int
		estimate int
	}{
		{
			name:    "not started",
			job:     models.DeletionJob{Status: models.DeletionPending, Steps: steps()},
			step:    models.StepValidateUser,
			percent: 5,
		},
		{
			name: "first of four batches",
			job: models.DeletionJob{
				Status:       models.DeletionInProgress,
				CurrentBatch: 1,
				TotalBatches: 4,
				Steps:        steps(models.StepDone, models.StepInProgress),
			},
			step:     models.StepBatchProcessing,
			percent:  31,
			estimate: 2,
		},
		{
			name: "provider delete",
			job: models.DeletionJob{
				Status:       models.DeletionInProgress,
				CurrentBatch: 2,
				TotalBatches: 2,
				Steps:        steps(models.StepDone, models.StepDone, models.StepInProgress),
			},
			step:    models.StepProviderDelete,
			percent: 95,
		},
		{
			name: "skipped provider step counts as done",
			job: models.DeletionJob{
				Status: models.DeletionInProgress,
				Steps:  steps(models.StepDone, models.StepDone, models.StepSkipped),
			},
			step:    models.StepCleanup,
			percent: 98,
		},
		{
			name: "completed",
			job: models.DeletionJob{
				Status:       models.DeletionCompleted,
				CurrentBatch: 3,
				TotalBatches: 3,
				Steps:        steps(models.StepDone, models.StepDone, models.StepDone, models.StepDone, models.StepDone),
			},
			step:    models.StepCompleted,
			percent: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := services.ComputeProgress(&tt.job)
			if p.CurrentStep != tt.step {
				t.Errorf("expected step %s, got %s", tt.step, p.CurrentStep)
			}
			if p.ProgressPercentage != tt.percent {
				t.Errorf("expected %d%%, got %d%%", tt.percent, p.ProgressPercentage)
			}
			if p.EstimatedMinutesRemaining != tt.estimate {
				t.Errorf("expected %d minutes remaining, got %d", tt.estimate, p.EstimatedMinutesRemaining)
			}
		})
	}
}

func TestCancelDeletion(t *testing.T) {
	svc, _ := newDeletionService(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	other := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	started := time.Now().UTC().Truncate(time.Second)

	job := requestDeletion(t, svc, user)

	// Not started yet
	_, err := svc.Cancel(ctx, testsupport.Current(user), job.JobID)
	assertCode(t, err, 400)

	startJob(t, svc.DB, job, started, models.StepValidateUser)

	_, err = svc.Cancel(ctx, testsupport.Current(other), job.JobID)
	assertCode(t, err, 403)

	svc.Now = func() time.Time { return started.Add(31 * time.Second) }
	_, err = svc.Cancel(ctx, testsupport.Current(user), job.JobID)
	assertCode(t, err, 400)
	if got := loadJob(t, svc.DB, job.JobID); got.Status != models.DeletionInProgress {
		t.Fatalf("late cancel must not change the job, got %s", got.Status)
	}

	svc.Now = func() time.Time { return started.Add(10 * time.Second) }
	cancelled, err := svc.Cancel(ctx, testsupport.Current(user), job.JobID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != models.DeletionCancelled || cancelled.CancellationRequestedAt == nil || cancelled.ActiveUserID != nil {
		t.Errorf("unexpected cancelled job: %+v", cancelled)
	}
	if step := cancelled.Step(models.StepValidateUser); step.Status != models.StepCancelled {
		t.Errorf("expected VALIDATE_USER cancelled, got %s", step.Status)
	}

	// The active slot is free again
	requestDeletion(t, svc, user)
}

func TestCancelDeletionPastValidation(t *testing.T) {
	svc, _ := newDeletionService(t)
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	started := time.Now().UTC()

	job := requestDeletion(t, svc, user)
	startJob(t, svc.DB, job, started, models.StepBatchProcessing)
	svc.Now = func() time.Time { return started.Add(5 * time.Second) }

	_, err := svc.Cancel(context.Background(), testsupport.Current(user), job.JobID)
	assertCode(t, err, 400)
}

func TestEmergencyStop(t *testing.T) {
	svc, _ := newDeletionService(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	admin := testsupport.CreateUser(t, svc.DB, models.RoleAdmin)

	job := requestDeletion(t, svc, user)
	startJob(t, svc.DB, job, time.Now().UTC().Add(-time.Hour), models.StepBatchProcessing)

	stopped, err := svc.EmergencyStop(ctx, admin.ID, job.JobID, "  ")
	if err != nil {
		t.Fatalf("EmergencyStop failed: %v", err)
	}
	if stopped.Status != models.DeletionCancelled || stopped.FailureReason != "emergency stop" {
		t.Errorf("unexpected stopped job: %s %q", stopped.Status, stopped.FailureReason)
	}
	for _, step := range stopped.Steps {
		if step.Status != models.StepCancelled {
			t.Errorf("expected step %s cancelled, got %s", step.StepName, step.Status)
		}
	}
	if n := testsupport.Count(t, svc.DB, &models.AuditLog{}, "action = ?", services.AuditDeletionEmergencyStop); n != 1 {
		t.Errorf("expected an emergency stop audit, got %d", n)
	}

	_, err = svc.EmergencyStop(ctx, admin.ID, job.JobID, "again")
	assertCode(t, err, 400)
	_, err = svc.EmergencyStop(ctx, admin.ID, "missing", "")
	assertCode(t, err, 404)
}

func TestSweepStuck(t *testing.T) {
	svc, _ := newDeletionService(t)
	ctx := context.Background()
	now := time.Now()
	svc.Now = func() time.Time { return now }

	stuckUser := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	freshUser := testsupport.CreateUser(t, svc.DB, models.RoleArtist)
	pendingUser := testsupport.CreateUser(t, svc.DB, models.RoleArtist)

	stuck := requestDeletion(t, svc, stuckUser)
	fresh := requestDeletion(t, svc, freshUser)
	pending := requestDeletion(t, svc, pendingUser)
	startJob(t, svc.DB, stuck, now.Add(-3*time.Hour), models.StepBatchProcessing)
	startJob(t, svc.DB, fresh, now.Add(-3*time.Hour), models.StepBatchProcessing)
	for _, j := range []*models.DeletionJob{stuck, pending} {
		if err := svc.DB.Model(&models.DeletionJob{}).Where("id = ?", j.ID).
			UpdateColumn("updated_at", now.Add(-2*time.Hour)).Error; err != nil {
			t.Fatalf("Failed to age job: %v", err)
		}
	}

	swept, err := svc.SweepStuck(ctx, time.Hour)
	if err != nil {
		t.Fatalf("SweepStuck failed: %v", err)
	}
	if len(swept) != 1 || swept[0].JobID != stuck.JobID {
		t.Fatalf("expected only the stuck job, got %+v", swept)
	}

	if got := loadJob(t, svc.DB, stuck.JobID); got.Status != models.DeletionNeedsManualReview || got.ActiveUserID != nil || got.FailureReason == "" {
		t.Errorf("unexpected escalated job: %s %q", got.Status, got.FailureReason)
	}
	if got := loadJob(t, svc.DB, fresh.JobID); got.Status != models.DeletionInProgress {
		t.Errorf("fresh job should be untouched, got %s", got.Status)
	}
	if got := loadJob(t, svc.DB, pending.JobID); got.Status != models.DeletionPending {
		t.Errorf("pending job should be untouched, got %s", got.Status)
	}

	ids, err := svc.ActiveJobIDs(ctx)
	if err != nil {
		t.Fatalf("ActiveJobIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected two active jobs, got %v", ids)
	}

	review, err := svc.ListJobs(ctx, []models.DeletionStatus{models.DeletionNeedsManualReview}, 0)
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(review) != 1 || review[0].JobID != stuck.JobID {
		t.Errorf("expected the escalated job, got %+v", review)
	}
	all, err := svc.ListJobs(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected the limit to apply, got %d", len(all))
	}
}
