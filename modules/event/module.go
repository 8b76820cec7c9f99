package event

import (
	"clubops/core/config"
	"clubops/core/database"
	"clubops/core/middleware"
	"clubops/modules/event/controller"
	"clubops/modules/event/repository"
	"clubops/modules/event/router"
	"clubops/modules/event/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, cfg *config.Config) {
	repo := repository.NewEventRepository(db)
	eventService := service.NewEventService(repo, cfg.Frontend.URL)
	ctrl := controller.NewEventController(eventService)

	router.NewEventRouter(ctrl).Setup(e, mw)
}
