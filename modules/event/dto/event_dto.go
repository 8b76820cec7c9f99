package dto

import (
	"time"

	"clubops/modules/event/entity"
)

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	Description string    `json:"description"`
}

type RegisterParticipantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type MarkAttendanceRequest struct {
	Email string `json:"email"`
}

type PublicEventResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Date  time.Time `json:"date"`
	Venue string    `json:"venue"`
}

type AttendanceTokenResponse struct {
	Token         string `json:"token"`
	AttendanceURL string `json:"attendanceUrl"`
}

type EventStatusResponse struct {
	EventID string                  `json:"eventId"`
	Status  entity.EventStatus      `json:"status"`
	Stats   entity.ParticipantStats `json:"stats"`
}
