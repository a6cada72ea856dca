package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contact-service/internal/domain"
	"github.com/spec-kit/contact-service/internal/repository"
	apperrors "github.com/spec-kit/contact-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated administrator.
type Principal struct {
	Admin *domain.Admin
	Role  string
}

// AuthMiddleware validates bearer tokens and loads admin principals.
type AuthMiddleware struct {
	tokens *TokenManager
	admins repository.AdminRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, admins repository.AdminRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, admins: admins}
}

// Handle enforces admin authentication. Missing or invalid credentials on
// management routes yield 403 with no detail on why.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err != nil {
		return err
	}
	if principal == nil {
		return apperrors.NewForbidden("forbidden")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads a principal when valid credentials are presented but lets
// anonymous requests through untouched. Used on the public submission route
// so authenticated admins bypass the anonymous rate limit.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err == nil && principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewForbidden("forbidden")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewForbidden("forbidden")
	}

	admin, err := m.admins.GetByID(c.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("forbidden")
		}
		return nil, apperrors.MapError(err)
	}
	if !admin.Active {
		return nil, apperrors.NewForbidden("forbidden")
	}

	return &Principal{Admin: admin, Role: claims.Role}, nil
}

// PrincipalFromContext retrieves the authenticated admin.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
