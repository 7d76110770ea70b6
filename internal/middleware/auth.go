package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"gorm.io/gorm"
)

// SessionCookie is the identity provider's session cookie name
const SessionCookie = "cookie_session"

const currentUserKey = "currentUser"

// Authenticate validates the session cookie with the identity provider, loads
// the local account and attaches it to the request as a models.CurrentUser.
// Missing, invalid and soft-deleted accounts are rejected with 401.
func Authenticate(provider services.IdentityProvider, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := c.Cookies(SessionCookie)
		if session == "" {
			return types.NewUnauthorizedError("Authorizer cookie \"" + SessionCookie + "\" not found")
		}

		sessionUser, err := provider.ValidateSession(c.UserContext(), session)
		if err != nil {
			return types.NewUnauthorizedError("Invalid session: " + err.Error())
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("id = ?", sessionUser.ID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewUnauthorizedError("account not found")
			}
			return err
		}
		if user.Role == models.RoleDeleted {
			return types.NewUnauthorizedError("account has been deleted")
		}

		c.Locals(currentUserKey, models.CurrentUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// Authenticate.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return types.NewUnauthorizedError("not authenticated")
		}
		if !user.IsAdmin() {
			return types.NewForbiddenError("admin role required")
		}
		return c.Next()
	}
}

// CurrentUser returns the caller attached by Authenticate
func CurrentUser(c *fiber.Ctx) (models.CurrentUser, bool) {
	user, ok := c.Locals(currentUserKey).(models.CurrentUser)
	return user, ok
}

// WithCurrentUser attaches user directly; used by tests and trusted internal routes
func WithCurrentUser(user models.CurrentUser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(currentUserKey, user)
		return c.Next()
	}
}
