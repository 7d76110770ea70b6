package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

// InviteHandler handles invite code routes
type InviteHandler struct {
	Invites *services.InviteService
	Log     *slog.Logger
}

// RedeemRequest carries the invite code
type RedeemRequest struct {
	Code string `json:"code"`
}

// RedeemInvite handles POST /api/invites/redeem
// @Summary Redeem an invite code
// @Description Upgrade the caller's ARTIST account to the role granted by the code
// @Tags Invites
// @Accept json
// @Produce json
// @Param body body RedeemRequest true "Invite code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /invites/redeem [post]
func (h *InviteHandler) RedeemInvite(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	var req RedeemRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	updated, err := h.Invites.Redeem(c.UserContext(), user, req.Code)
	if err != nil {
		return utils.HandleError(c, h.Log, err)
	}

	return utils.SuccessResponse(c, fiber.Map{
		"ok":   true,
		"role": updated.Role,
	}, fiber.StatusOK)
}
