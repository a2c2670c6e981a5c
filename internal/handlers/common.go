// Package handlers contains the HTTP handlers for the settlement API.
package handlers

import (
	"carepay/internal/models"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
