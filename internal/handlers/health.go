package handlers

import (
	"carepay/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports process, database and cache health.
func HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
	}

	if repositories.DB != nil {
		sqlDB, err := repositories.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "down"
		} else {
			status["database"] = "up"
		}
	}

	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
			status["cache"] = "down"
		} else {
			status["cache"] = "up"
		}
	}

	code := fiber.StatusOK
	if status["status"] != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(status)
}
