package controller

import (
	"clubops/core/constants"
	"clubops/core/controller"
	"clubops/core/errors"
	"clubops/core/utils"
	"clubops/modules/event/dto"
	"clubops/modules/event/service"

	"github.com/labstack/echo/v4"
)

type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

func NewEventController(svc service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   svc,
	}
}

func (e *EventController) claims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

// Create handles POST /events.
func (e *EventController) Create(c echo.Context) error {
	claims, ok := e.claims(c)
	if !ok {
		return e.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return e.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	event, appErr := e.EventService.CreateEvent(c.Request().Context(), claims.UserID, &req)
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.CreatedResponse(c, event, "Event created")
}

// List handles GET /events.
func (e *EventController) List(c echo.Context) error {
	claims, ok := e.claims(c)
	if !ok {
		return e.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	events, appErr := e.EventService.ListEvents(c.Request().Context(), claims.UserID)
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, events, "Success")
}

// Public handles GET /events/:eventID/public — no auth.
func (e *EventController) Public(c echo.Context) error {
	event, appErr := e.EventService.GetPublicEvent(c.Request().Context(), c.Param("eventID"))
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, event, "Success")
}

// Participants handles GET /events/:eventID/participants.
func (e *EventController) Participants(c echo.Context) error {
	claims, ok := e.claims(c)
	if !ok {
		return e.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	participants, appErr := e.EventService.GetParticipants(c.Request().Context(), claims.UserID, c.Param("eventID"))
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, participants, "Success")
}

// IssueAttendanceToken handles POST /events/:eventID/attendance-token.
func (e *EventController) IssueAttendanceToken(c echo.Context) error {
	claims, ok := e.claims(c)
	if !ok {
		return e.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	token, appErr := e.EventService.IssueAttendanceToken(c.Request().Context(), claims.UserID, c.Param("eventID"))
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, token, "Attendance token issued")
}

// Register handles POST /events/:eventID/register — public.
func (e *EventController) Register(c echo.Context) error {
	var req dto.RegisterParticipantRequest
	if err := c.Bind(&req); err != nil {
		return e.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	participant, appErr := e.EventService.RegisterParticipant(c.Request().Context(), c.Param("eventID"), &req)
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.CreatedResponse(c, participant, "Registered")
}

// MarkAttendance handles POST /events/:eventID/attendance/:token — public.
func (e *EventController) MarkAttendance(c echo.Context) error {
	var req dto.MarkAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return e.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	participant, appErr := e.EventService.MarkAttendance(c.Request().Context(),
		c.Param("eventID"), c.Param("token"), req.Email)
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, participant, "Attendance marked")
}

// Status handles GET /events/:eventID/status.
func (e *EventController) Status(c echo.Context) error {
	claims, ok := e.claims(c)
	if !ok {
		return e.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	status, appErr := e.EventService.GetEventStatus(c.Request().Context(), claims.UserID, c.Param("eventID"))
	if appErr != nil {
		return e.ErrorResponse(c, appErr)
	}
	return e.SuccessResponse(c, status, "Success")
}
