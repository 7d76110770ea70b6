package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"gorm.io/gorm"
)

// Pinger is implemented by optional dependencies such as the Redis queue
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Queue        string            `json:"queue,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detailKey string, err error, log *slog.Logger) {
	r.Status = "unhealthy"
	r.Details[detailKey] = err.Error()
	msg := fmt.Sprintf("%s check failed: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Warn("health check failed", "component", component, "error", err)
}

// HealthCheck performs a comprehensive health check of the service. provider
// and queue may be nil.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, provider IdentityProvider, queue Pinger, log *slog.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "database_error", err, log)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", "database_ping_error", err, log)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check identity provider connectivity
	if provider == nil {
		result.Authorizer = "disabled"
	} else if err := provider.Ping(ctx); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer", "authorizer_error", err, log)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if queue != nil {
		if err := queue.Ping(ctx); err != nil {
			result.Queue = "unreachable"
			result.fail("queue", "queue_error", err, log)
		} else {
			result.Queue = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	}
	return result
}
