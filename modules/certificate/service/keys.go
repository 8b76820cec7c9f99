package service

import "fmt"

// TemplateKey is the blob key for an event's uploaded template.
func TemplateKey(eventID string) string {
	return fmt.Sprintf("certificates/templates/%s.pdf", eventID)
}

// ArtifactKey is the blob key for one participant's rendered certificate.
func ArtifactKey(eventID, participantID string) string {
	return fmt.Sprintf("certificates/generated/%s/%s.pdf", eventID, participantID)
}
