package router

import (
	"clubops/core/middleware"
	"clubops/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	Controller *controller.AuthController
}

func NewAuthRouter(ctrl *controller.AuthController) *AuthRouter {
	return &AuthRouter{Controller: ctrl}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	auth := e.Group("/api/auth")

	auth.POST("/register", r.Controller.Register)
	auth.POST("/login", r.Controller.Login)
	auth.GET("/google", r.Controller.GoogleAuth)
	auth.GET("/google/callback", r.Controller.GoogleCallback)
	auth.POST("/session", r.Controller.Session)

	auth.POST("/logout", r.Controller.Logout, mw.AuthMiddleware())
	auth.POST("/complete-club", r.Controller.CompleteClub, mw.AuthMiddleware())
	auth.GET("/me", r.Controller.Me, mw.AuthMiddleware())
}
