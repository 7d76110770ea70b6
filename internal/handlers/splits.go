package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

// SplitHandler handles split sheet routes
type SplitHandler struct {
	Splits *services.SplitService
	Log    *slog.Logger
}

// SplitSheetResponse wraps a single sheet
type SplitSheetResponse struct {
	SplitSheet *models.SplitSheet `json:"splitSheet"`
}

// NotifyResponse reports how many notifications were created
type NotifyResponse struct {
	Ok       bool `json:"ok"`
	Notified int  `json:"notified"`
}

// CreateSplit handles POST /api/splits
// @Summary Create a split sheet
// @Description Create a song and its split sheet. Status defaults to PENDING; SIGNED requires writer shares totalling 50.
// @Tags Splits
// @Accept json
// @Produce json
// @Param body body services.CreateSplitInput true "Split sheet"
// @Success 201 {object} SplitSheetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits [post]
func (h *SplitHandler) CreateSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var in services.CreateSplitInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	sheet, err := h.Splits.Create(c.UserContext(), user, in)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, SplitSheetResponse{SplitSheet: sheet}, fiber.StatusCreated)
}

// ListSplits handles GET /api/splits
// @Summary List split sheets
// @Description List the split sheets the caller created or contributes to. Admins see every sheet.
// @Tags Splits
// @Produce json
// @Success 200 {array} models.SplitSheet
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits [get]
func (h *SplitHandler) ListSplits(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	sheets, err := h.Splits.List(c.UserContext(), user)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, fiber.Map{"splitSheets": sheets}, fiber.StatusOK)
}

// GetSplit handles GET /api/splits/:id
// @Summary Get a split sheet
// @Description Get a split sheet with the caller's derived permissions
// @Tags Splits
// @Produce json
// @Param id path string true "Split sheet ID"
// @Success 200 {object} services.SheetView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id} [get]
func (h *SplitHandler) GetSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	view, err := h.Splits.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// UpdateSplit handles PUT /api/splits/:id
// @Summary Replace a split sheet
// @Description Replace the song fields and the full contributor set. Supply version to detect concurrent edits.
// @Tags Splits
// @Accept json
// @Produce json
// @Param id path string true "Split sheet ID"
// @Param body body services.UpdateSplitInput true "Split sheet"
// @Success 200 {object} SplitSheetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id} [put]
func (h *SplitHandler) UpdateSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var in services.UpdateSplitInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	sheet, err := h.Splits.Update(c.UserContext(), user, c.Params("id"), in)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, SplitSheetResponse{SplitSheet: sheet}, fiber.StatusOK)
}

// PatchContributor handles PATCH /api/splits/:id/contributor
// @Summary Patch one contributor
// @Description Update allow-listed fields of a single contributor row
// @Tags Splits
// @Accept json
// @Produce json
// @Param id path string true "Split sheet ID"
// @Param body body services.ContributorPatch true "Contributor fields"
// @Success 200 {object} services.PatchResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id}/contributor [patch]
func (h *SplitHandler) PatchContributor(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var patch services.ContributorPatch
	if err := parseBody(c, &patch); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	result, err := h.Splits.PatchContributor(c.UserContext(), user, c.Params("id"), patch)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// FinalizeSplit handles POST /api/splits/:id/finalize
// @Summary Finalize a split sheet
// @Description Move a PENDING or DISPUTED sheet to SIGNED once writer shares total 50
// @Tags Splits
// @Produce json
// @Param id path string true "Split sheet ID"
// @Success 200 {object} SplitSheetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id}/finalize [post]
func (h *SplitHandler) FinalizeSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	sheet, err := h.Splits.Finalize(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, SplitSheetResponse{SplitSheet: sheet}, fiber.StatusOK)
}

// DisputeSplit handles POST /api/splits/:id/dispute
// @Summary Dispute a split sheet
// @Description A linked contributor other than the creator disputes a PENDING or SIGNED sheet
// @Tags Splits
// @Accept json
// @Produce json
// @Param id path string true "Split sheet ID"
// @Param body body services.DisputeInput false "Dispute reason"
// @Success 200 {object} SplitSheetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id}/dispute [post]
func (h *SplitHandler) DisputeSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var in services.DisputeInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	sheet, err := h.Splits.Dispute(c.UserContext(), user, c.Params("id"), in)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, SplitSheetResponse{SplitSheet: sheet}, fiber.StatusOK)
}

// NotifySplit handles POST /api/splits/:id/notify
// @Summary Re-notify parties
// @Description Send an update notification to every resolved party of an unsigned sheet
// @Tags Splits
// @Accept json
// @Produce json
// @Param id path string true "Split sheet ID"
// @Param body body services.NotifyInput false "Optional message"
// @Success 200 {object} NotifyResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id}/notify [post]
func (h *SplitHandler) NotifySplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var in services.NotifyInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	count, err := h.Splits.NotifyParties(c.UserContext(), user, c.Params("id"), in)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, NotifyResponse{Ok: true, Notified: count}, fiber.StatusOK)
}

// DeleteSplit handles DELETE /api/splits/:id
// @Summary Delete a split sheet
// @Description Delete a sheet with its contributors, signatures, notifications and audit logs. SIGNED sheets require admin.
// @Tags Splits
// @Param id path string true "Split sheet ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /splits/{id} [delete]
func (h *SplitHandler) DeleteSplit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	if err := h.Splits.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
