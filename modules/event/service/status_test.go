package service

import (
	"testing"

	"clubops/modules/event/entity"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name        string
		stats       entity.ParticipantStats
		tokenIssued bool
		want        entity.EventStatus
	}{
		{
			name: "no participants no token",
			want: entity.StatusDraft,
		},
		{
			name:        "token issued only",
			tokenIssued: true,
			want:        entity.StatusRegistrationOpen,
		},
		{
			name:  "registrations but no token",
			stats: entity.ParticipantStats{Total: 10},
			want:  entity.StatusDraft,
		},
		{
			name:        "some present",
			stats:       entity.ParticipantStats{Total: 10, Present: 5},
			tokenIssued: true,
			want:        entity.StatusInProgress,
		},
		{
			name:  "present without token",
			stats: entity.ParticipantStats{Total: 10, Present: 5},
			want:  entity.StatusInProgress,
		},
		{
			name:        "some generated",
			stats:       entity.ParticipantStats{Total: 10, Present: 8, Generated: 3},
			tokenIssued: true,
			want:        entity.StatusCompleted,
		},
		{
			name:        "generated but only partially emailed",
			stats:       entity.ParticipantStats{Total: 10, Present: 8, Generated: 8, Emailed: 5},
			tokenIssued: true,
			want:        entity.StatusCompleted,
		},
		{
			name:        "all generated emailed",
			stats:       entity.ParticipantStats{Total: 10, Present: 10, Generated: 10, Emailed: 10},
			tokenIssued: true,
			want:        entity.StatusClosed,
		},
		{
			name:        "zero generated zero emailed is not closed",
			stats:       entity.ParticipantStats{Total: 10, Present: 10},
			tokenIssued: true,
			want:        entity.StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.stats, tt.tokenIssued))
		})
	}
}
