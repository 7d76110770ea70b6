package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 500
)

// AdminHandler handles admin-only routes
type AdminHandler struct {
	Deletions *services.DeletionService
	Invites   *services.InviteService
	Log       *slog.Logger
}

// StopRequest carries an optional emergency stop reason
type StopRequest struct {
	Reason string `json:"reason"`
}

// CreateInvite handles POST /api/admin/invites
// @Summary Create an invite code
// @Description Create a single-use invite code granting LABEL or ADMIN
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body services.CreateInviteInput true "Invite"
// @Success 201 {object} models.InviteCode
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/invites [post]
func (h *AdminHandler) CreateInvite(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var in services.CreateInviteInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	invite, err := h.Invites.Create(c.UserContext(), user.ID, in)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, invite, fiber.StatusCreated)
}

// ListDeletionJobs handles GET /api/admin/deletion-jobs
// @Summary List deletion jobs
// @Description List deletion jobs newest first, optionally filtered by one or more statuses
// @Tags Admin
// @Produce json
// @Param status query []string false "Job statuses" collectionFormat(multi)
// @Param limit query int false "Maximum number of jobs"
// @Success 200 {array} models.DeletionJob
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/deletion-jobs [get]
func (h *AdminHandler) ListDeletionJobs(c *fiber.Ctx) error {
	limit, err := parseLimit(c, defaultJobListLimit, maxJobListLimit)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var statuses []models.DeletionStatus
	for _, s := range parseList(c, "status") {
		statuses = append(statuses, models.DeletionStatus(strings.ToUpper(s)))
	}

	jobs, err := h.Deletions.ListJobs(c.UserContext(), statuses, limit)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, fiber.Map{"jobs": jobs}, fiber.StatusOK)
}

// StopDeletionJob handles POST /api/admin/deletion-jobs/:jobId/stop
// @Summary Emergency stop a deletion job
// @Description Flip an active deletion job to CANCELLED. A running pipeline stops at its next step or batch boundary.
// @Tags Admin
// @Accept json
// @Produce json
// @Param jobId path string true "Deletion job ID"
// @Param body body StopRequest false "Reason"
// @Success 200 {object} models.DeletionJob
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/deletion-jobs/{jobId}/stop [post]
func (h *AdminHandler) StopDeletionJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var req StopRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	job, err := h.Deletions.EmergencyStop(c.UserContext(), user.ID, c.Params("jobId"), req.Reason)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, job, fiber.StatusOK)
}
