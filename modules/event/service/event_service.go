package service

import (
	"context"
	"fmt"
	"strings"

	"clubops/core/errors"
	"clubops/core/logger"
	"clubops/core/utils"
	"clubops/modules/event/dto"
	"clubops/modules/event/entity"
	"clubops/modules/event/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventService struct {
	repo        repository.EventRepositoryInterface
	frontendURL string
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, userID string, req *dto.CreateEventRequest) (*entity.Event, *errors.AppError)
	ListEvents(ctx context.Context, userID string) ([]entity.Event, *errors.AppError)
	GetPublicEvent(ctx context.Context, eventID string) (*dto.PublicEventResponse, *errors.AppError)
	GetParticipants(ctx context.Context, userID, eventID string) ([]entity.Participant, *errors.AppError)
	IssueAttendanceToken(ctx context.Context, userID, eventID string) (*dto.AttendanceTokenResponse, *errors.AppError)
	RegisterParticipant(ctx context.Context, eventID string, req *dto.RegisterParticipantRequest) (*entity.Participant, *errors.AppError)
	MarkAttendance(ctx context.Context, eventID, token, email string) (*entity.Participant, *errors.AppError)
	GetEventStatus(ctx context.Context, userID, eventID string) (*dto.EventStatusResponse, *errors.AppError)
}

func NewEventService(repo repository.EventRepositoryInterface, frontendURL string) EventServiceInterface {
	return &EventService{repo: repo, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// scopedEvent loads an event and verifies it belongs to the caller's
// club. Events outside the caller's club are reported as not found
// rather than forbidden, so event IDs do not leak across tenants.
func (s *EventService) scopedEvent(ctx context.Context, userID, eventID string) (*entity.Event, *errors.AppError) {
	scope, err := s.repo.GetScopeByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve membership", err)
	}
	if scope == nil {
		return nil, errors.NewAppError(errors.ErrForbidden, "No active club membership", nil)
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil || event.ClubID != scope.ClubID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return event, nil
}

func (s *EventService) CreateEvent(ctx context.Context, userID string, req *dto.CreateEventRequest) (*entity.Event, *errors.AppError) {
	if req.Name == "" || req.Type == "" || req.Date.IsZero() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Name, type and date are required", nil)
	}

	scope, err := s.repo.GetScopeByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve membership", err)
	}
	if scope == nil {
		return nil, errors.NewAppError(errors.ErrForbidden, "No active club membership", nil)
	}

	event := &entity.Event{
		ID:             utils.GenerateID(),
		ClubID:         scope.ClubID,
		AcademicYearID: scope.AcademicYearID,
		Name:           req.Name,
		Slug:           slug.Make(req.Name),
		Type:           req.Type,
		Date:           req.Date,
		Venue:          req.Venue,
		Description:    req.Description,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create event", err)
	}

	logger.Info("EventService:CreateEvent", "eventId", event.ID, "clubId", event.ClubID)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, userID string) ([]entity.Event, *errors.AppError) {
	scope, err := s.repo.GetScopeByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve membership", err)
	}
	if scope == nil {
		return nil, errors.NewAppError(errors.ErrForbidden, "No active club membership", nil)
	}

	events, err := s.repo.GetEventsByClubID(ctx, scope.ClubID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list events", err)
	}
	return events, nil
}

func (s *EventService) GetPublicEvent(ctx context.Context, eventID string) (*dto.PublicEventResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	return &dto.PublicEventResponse{
		ID:    event.ID,
		Name:  event.Name,
		Type:  event.Type,
		Date:  event.Date,
		Venue: event.Venue,
	}, nil
}

func (s *EventService) GetParticipants(ctx context.Context, userID, eventID string) ([]entity.Participant, *errors.AppError) {
	if _, appErr := s.scopedEvent(ctx, userID, eventID); appErr != nil {
		return nil, appErr
	}

	participants, err := s.repo.GetParticipantsByEventID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list participants", err)
	}
	return participants, nil
}

// IssueAttendanceToken mints a fresh opaque token for the event,
// replacing any previous one. Old attendance links stop working.
func (s *EventService) IssueAttendanceToken(ctx context.Context, userID, eventID string) (*dto.AttendanceTokenResponse, *errors.AppError) {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return nil, appErr
	}

	token := uuid.NewString()
	if err := s.repo.SetAttendanceToken(ctx, event.ID, token); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue attendance token", err)
	}

	logger.Info("EventService:IssueAttendanceToken", "eventId", event.ID)
	return &dto.AttendanceTokenResponse{
		Token:         token,
		AttendanceURL: fmt.Sprintf("%s/events/%s/attend/%s", s.frontendURL, event.ID, token),
	}, nil
}

func (s *EventService) RegisterParticipant(ctx context.Context, eventID string, req *dto.RegisterParticipantRequest) (*entity.Participant, *errors.AppError) {
	if req.Name == "" || req.Email == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Name and email are required", nil)
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	participant := &entity.Participant{
		ID:      utils.GenerateID(),
		EventID: event.ID,
		Name:    req.Name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
	}
	if err := s.repo.CreateParticipant(ctx, participant); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Already registered for this event", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to register participant", err)
	}

	return participant, nil
}

func (s *EventService) MarkAttendance(ctx context.Context, eventID, token, email string) (*entity.Participant, *errors.AppError) {
	if email == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Email is required", nil)
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.AttendanceToken == nil || *event.AttendanceToken != token {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid attendance token", nil)
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	participant, err := s.repo.GetParticipantByEmail(ctx, event.ID, normalized)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load participant", err)
	}
	if participant == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant not registered for this event", nil)
	}

	marked, err := s.repo.MarkPresent(ctx, event.ID, normalized)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to mark attendance", err)
	}
	if !marked {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Attendance already marked", nil)
	}

	participant.IsPresent = true
	return participant, nil
}

func (s *EventService) GetEventStatus(ctx context.Context, userID, eventID string) (*dto.EventStatusResponse, *errors.AppError) {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return nil, appErr
	}

	stats, err := s.repo.CountParticipantStats(ctx, event.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to compute event stats", err)
	}

	return &dto.EventStatusResponse{
		EventID: event.ID,
		Status:  ComputeStatus(*stats, event.AttendanceToken != nil),
		Stats:   *stats,
	}, nil
}
