package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

// ProfileHandler handles account deletion routes
type ProfileHandler struct {
	Deletions *services.DeletionService
	Log       *slog.Logger
}

// DeletionAcceptedResponse is returned when a deletion job is queued
type DeletionAcceptedResponse struct {
	Ok     bool                  `json:"ok"`
	JobID  string                `json:"jobId"`
	Status models.DeletionStatus `json:"status"`
}

// CancelResponse is returned when a deletion job is cancelled
type CancelResponse struct {
	Ok     bool                  `json:"ok"`
	JobID  string                `json:"jobId"`
	Status models.DeletionStatus `json:"status"`
}

func jobIDQuery(c *fiber.Ctx) (string, error) {
	jobID := c.Query("jobId")
	if jobID == "" {
		return "", types.NewValidationError("jobId query parameter is required")
	}
	return jobID, nil
}

// RequestDeletion handles POST /api/profiles/delete-account
// @Summary Request account deletion
// @Description Queue an asynchronous account deletion. The confirmation must be the literal DELETE.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param body body services.DeletionRequest true "Deletion request"
// @Success 202 {object} DeletionAcceptedResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profiles/delete-account [post]
func (h *ProfileHandler) RequestDeletion(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var req services.DeletionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	job, err := h.Deletions.RequestDeletion(c.UserContext(), user, req)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, DeletionAcceptedResponse{
		Ok:     true,
		JobID:  job.JobID,
		Status: job.Status,
	}, fiber.StatusAccepted)
}

// GetDeletionProgress handles GET /api/profiles/delete-account?jobId=
// @Summary Get account deletion progress
// @Description Poll the progress of a deletion job
// @Tags Profiles
// @Produce json
// @Param jobId query string true "Deletion job ID"
// @Success 200 {object} services.DeletionProgress
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profiles/delete-account [get]
func (h *ProfileHandler) GetDeletionProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}
	jobID, err := jobIDQuery(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	progress, err := h.Deletions.Progress(c.UserContext(), user, jobID)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, progress, fiber.StatusOK)
}

// CancelDeletion handles DELETE /api/profiles/delete-account?jobId=
// @Summary Cancel account deletion
// @Description Cancel a deletion job within 30 seconds of its start, before batch processing begins
// @Tags Profiles
// @Produce json
// @Param jobId query string true "Deletion job ID"
// @Success 200 {object} CancelResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profiles/delete-account [delete]
func (h *ProfileHandler) CancelDeletion(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}
	jobID, err := jobIDQuery(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	job, err := h.Deletions.Cancel(c.UserContext(), user, jobID)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, CancelResponse{Ok: true, JobID: job.JobID, Status: job.Status}, fiber.StatusOK)
}
