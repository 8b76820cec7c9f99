package service

import "clubops/modules/event/entity"

// ComputeStatus derives the event lifecycle stage from participant
// counters. Rules are evaluated top to bottom and a later match wins,
// so an event can never regress by satisfying an earlier rule.
func ComputeStatus(stats entity.ParticipantStats, tokenIssued bool) entity.EventStatus {
	status := entity.StatusDraft

	if tokenIssued {
		status = entity.StatusRegistrationOpen
	}
	if stats.Present > 0 {
		status = entity.StatusInProgress
	}
	if stats.Generated > 0 {
		status = entity.StatusCompleted
	}
	if stats.Generated > 0 && stats.Generated == stats.Emailed {
		status = entity.StatusClosed
	}
	return status
}
