package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

// NotificationHandler handles the caller's notification inbox
type NotificationHandler struct {
	Inbox *services.InboxService
	Log   *slog.Logger
}

// maxMarkRead caps the ids accepted by one mark-read call
const maxMarkRead = 500

// MarkReadRequest names the notifications to mark read; an empty list marks all
type MarkReadRequest struct {
	IDs types.FlexList[string] `json:"ids" swaggertype:"array,string"`
}

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum number of notifications"
// @Success 200 {object} services.InboxPage
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}
	limit, err := parseLimit(c, defaultInboxLimit, maxInboxLimit)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	page, err := h.Inbox.List(c.UserContext(), user.ID, parseBool(c, "unread"), limit)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// MarkRead handles PATCH /api/notifications/:id/read
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	notification, err := h.Inbox.MarkRead(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, notification, fiber.StatusOK)
}

// MarkManyRead handles POST /api/notifications/read
// @Summary Mark notifications read
// @Description Mark the listed notifications read. ids may be a single id or a list; omit it to mark everything read.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body MarkReadRequest false "Notification IDs"
// @Success 200 {object} utils.CountResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /notifications/read [post]
func (h *NotificationHandler) MarkManyRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var req MarkReadRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	ids := types.DistinctIDs(req.IDs)
	if len(req.IDs) > 0 && len(ids) == 0 {
		return utils.HandleError(c, h.Log, types.NewValidationError("ids must not be blank"))
	}
	if len(ids) > maxMarkRead {
		return utils.HandleError(c, h.Log, types.NewValidationError("at most %d ids can be marked at once", maxMarkRead))
	}

	affected, err := h.Inbox.MarkManyRead(c.UserContext(), user.ID, ids)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, utils.CountResponseStruct{Ok: true, AffectedRows: affected}, fiber.StatusOK)
}
