package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
)

// APIVersion is the version served when the client does not ask for one
const APIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores the normalized
// version in context and echoes it on the response. Only major version 1 is
// served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, ok := normalizeVersion(c.Get("X-Api-Version", APIVersion))
		if !ok {
			return types.NewValidationError("unsupported API version %q", c.Get("X-Api-Version"))
		}

		// Store version in context
		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}

// normalizeVersion pads "1" and "1.2" to three parts and rejects other majors
func normalizeVersion(v string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(v), "v"), ".")
	if len(parts) > 3 || parts[0] != "1" {
		return "", false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return "", false
		}
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return strings.Join(parts, "."), true
}
