package entity

import "time"

type EventStatus string

const (
	StatusDraft            EventStatus = "DRAFT"
	StatusRegistrationOpen EventStatus = "REGISTRATION_OPEN"
	StatusInProgress       EventStatus = "IN_PROGRESS"
	StatusCompleted        EventStatus = "COMPLETED"
	StatusClosed           EventStatus = "CLOSED"
)

type Event struct {
	ID                     string    `db:"id" json:"id"`
	ClubID                 string    `db:"club_id" json:"clubId"`
	AcademicYearID         string    `db:"academic_year_id" json:"academicYearId"`
	Name                   string    `db:"name" json:"name"`
	Slug                   string    `db:"slug" json:"slug"`
	Type                   string    `db:"type" json:"type"`
	Date                   time.Time `db:"date" json:"date"`
	Venue                  string    `db:"venue" json:"venue"`
	Description            string    `db:"description" json:"description"`
	AttendanceToken        *string   `db:"attendance_token" json:"-"`
	CertificateTemplateKey *string   `db:"certificate_template_key" json:"-"`
	CertificateLayout      []byte    `db:"certificate_layout" json:"-"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

type Participant struct {
	ID                   string    `db:"id" json:"id"`
	EventID              string    `db:"event_id" json:"eventId"`
	Name                 string    `db:"name" json:"name"`
	Email                string    `db:"email" json:"email"`
	Phone                string    `db:"phone" json:"phone"`
	IsPresent            bool      `db:"is_present" json:"isPresent"`
	CertificateGenerated bool      `db:"certificate_generated" json:"certificateGenerated"`
	CertificateEmailed   bool      `db:"certificate_emailed" json:"certificateEmailed"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
}

// ParticipantStats are the per-event counters the status aggregation
// and the status endpoint are computed from.
type ParticipantStats struct {
	Total     int `db:"total" json:"total"`
	Present   int `db:"present" json:"present"`
	Generated int `db:"generated" json:"generated"`
	Emailed   int `db:"emailed" json:"emailed"`
}
