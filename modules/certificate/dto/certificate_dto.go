package dto

import "clubops/modules/certificate/entity"

type SaveLayoutRequest struct {
	Name  entity.Anchor `json:"name"`
	Event entity.Anchor `json:"event"`
}

type TemplateResponse struct {
	TemplateURL *string       `json:"templateUrl"`
	Layout      entity.Layout `json:"layout"`
}

type GenerateResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type EmailFailure struct {
	ParticipantID string `json:"participantId"`
	Email         string `json:"email"`
	Reason        string `json:"reason"`
}

type EmailResponse struct {
	Message  string         `json:"message"`
	Count    int            `json:"count"`
	Failures []EmailFailure `json:"failures,omitempty"`
}
