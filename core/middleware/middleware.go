package middleware

import (
	"context"
	"strings"

	"clubops/core/cache"
	"clubops/core/constants"
	"clubops/core/controller"
	"clubops/core/errors"
	"clubops/core/logger"
	"clubops/core/utils"

	"github.com/labstack/echo/v4"
)

// RoleChecker answers whether a user holds a role assignment; implemented
// by the auth repository.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type Middleware struct {
	cache *cache.Cache
	roles RoleChecker
}

func New(c *cache.Cache, roles RoleChecker) *Middleware {
	return &Middleware{
		cache: c,
		roles: roles,
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(constants.CookieToken); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware verifies the JWT (header or cookie), rejects
// blacklisted tokens, and stores the claims on the request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "Unauthorized")
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "Invalid token")
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:AuthMiddleware:IsTokenBlacklisted", err)
				} else if blacklisted {
					return controller.NewErrorResponse(401, errors.ErrTokenExpired, "Token revoked")
				}
			}

			c.Set(constants.ContextTokenData, claims)
			c.Set(constants.ContextRawToken, token)
			return next(c)
		}
	}
}

// RequireRole gates a route on a role assignment for the authenticated user.
func (m *Middleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
			if !ok || claims == nil {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "Unauthorized")
			}

			has, err := m.roles.HasRole(c.Request().Context(), claims.UserID, role)
			if err != nil {
				logger.Error("Middleware:RequireRole:HasRole", err)
				return controller.NewErrorResponse(500, errors.ErrInternalServer, "Failed to resolve role")
			}
			if !has {
				return controller.NewErrorResponse(403, errors.ErrForbidden, "Forbidden")
			}

			return next(c)
		}
	}
}
