package handlers

import (
	"librahub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// currentUser pulls the authenticated user's ID and role out of the
// request context set by the auth middleware.
func currentUser(c *fiber.Ctx) (uint, domain.Role, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return 0, "", false
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return 0, "", false
	}
	return userID, domain.Role(role), true
}
