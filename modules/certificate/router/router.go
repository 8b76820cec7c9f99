package router

import (
	"clubops/core/constants"
	"clubops/core/middleware"
	"clubops/modules/certificate/controller"

	"github.com/labstack/echo/v4"
)

type CertificateRouter struct {
	Controller *controller.CertificateController
}

func NewCertificateRouter(ctrl *controller.CertificateController) *CertificateRouter {
	return &CertificateRouter{Controller: ctrl}
}

func (r *CertificateRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	admin := mw.RequireRole(constants.RoleAdmin)

	events := e.Group("/api/events", mw.AuthMiddleware(), admin)
	events.POST("/:eventID/certificate-template", r.Controller.UploadTemplate)
	events.GET("/:eventID/certificate-template", r.Controller.GetTemplate)
	events.PUT("/:eventID/certificate-layout", r.Controller.SaveLayout)
	events.POST("/:eventID/certificates/generate", r.Controller.Generate)
	events.POST("/:eventID/certificates/email", r.Controller.Email)

	e.GET("/api/certificates/:participantID", r.Controller.Download, mw.AuthMiddleware(), admin)
}
