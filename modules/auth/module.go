package auth

import (
	"clubops/core/cache"
	"clubops/core/config"
	"clubops/core/database"
	"clubops/core/middleware"
	"clubops/modules/auth/controller"
	"clubops/modules/auth/repository"
	"clubops/modules/auth/router"
	"clubops/modules/auth/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware, cfg *config.Config) {
	repo := repository.NewAuthRepository(db)
	authService := service.NewAuthService(repo, c, cfg.Google)
	ctrl := controller.NewAuthController(authService, cfg.Frontend)

	router.NewAuthRouter(ctrl).Setup(e, mw)
}

// NewRoleChecker exposes role lookups to the auth middleware without
// pulling other modules into a dependency on this package's service.
func NewRoleChecker(db database.IDatabase) middleware.RoleChecker {
	return repository.NewAuthRepository(db)
}
