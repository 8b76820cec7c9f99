package router

import (
	"clubops/core/constants"
	"clubops/core/middleware"
	"clubops/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	Controller *controller.EventController
}

func NewEventRouter(ctrl *controller.EventController) *EventRouter {
	return &EventRouter{Controller: ctrl}
}

func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	events := e.Group("/api/events")

	// Public participant-facing routes.
	events.GET("/:eventID/public", r.Controller.Public)
	events.POST("/:eventID/register", r.Controller.Register)
	events.POST("/:eventID/attendance/:token", r.Controller.MarkAttendance)

	admin := mw.RequireRole(constants.RoleAdmin)

	events.POST("", r.Controller.Create, mw.AuthMiddleware(), admin)
	events.GET("", r.Controller.List, mw.AuthMiddleware())
	events.GET("/:eventID/participants", r.Controller.Participants, mw.AuthMiddleware(), admin)
	events.POST("/:eventID/attendance-token", r.Controller.IssueAttendanceToken, mw.AuthMiddleware(), admin)
	events.GET("/:eventID/status", r.Controller.Status, mw.AuthMiddleware(), admin)
}
