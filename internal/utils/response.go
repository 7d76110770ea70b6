package utils

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"gorm.io/gorm"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":     message,
		"status":    status,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error":        message,
		"status":       fiber.StatusConflict,
		"ok":           false,
		"versionError": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         types.KindVersion,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.KindNotFound)
}

// HandleError converts a service error into the error envelope. Domain errors
// keep their code and message; anything unexpected is logged and hidden
// behind a generic 500.
func HandleError(c *fiber.Ctx, log *slog.Logger, err error) error {
	if ce, ok := types.AsCustomError(err); ok {
		if ce.Type == types.KindVersion {
			return VersionErrorResponse(c, ce.Message)
		}
		return ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}

	var fe *fiber.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundResponse(c, "Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrorResponse(c, "Resource already exists", fiber.StatusConflict, types.KindConflict)
	case errors.As(err, &fe):
		return ErrorResponse(c, fe.Message, fe.Code, "request")
	}

	if log != nil {
		log.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, types.KindInternalError)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error        string `json:"error"`
	Status       int    `json:"status"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Type         string `json:"type,omitempty"`
	VersionError bool   `json:"versionError,omitempty"`
}

// CountResponseStruct defines the schema for responses reporting affected rows
type CountResponseStruct struct {
	Ok           bool  `json:"ok"`
	AffectedRows int64 `json:"affectedRows"`
}
