package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/contact-service/pkg/util"
)

// RequireAdmin ensures the caller carries an admin principal.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Admin == nil || principal.Role != RoleAdmin {
			return apperrors.NewForbidden("forbidden")
		}
		return c.Next()
	}
}
