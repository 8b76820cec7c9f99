package repository

import (
	"context"
	"database/sql"
	"errors"

	"clubops/core/database"
	"clubops/core/logger"
	"clubops/modules/event/entity"

	"github.com/lib/pq"
)

// ErrDuplicate maps a unique-constraint violation to a business conflict.
var ErrDuplicate = errors.New("duplicate record")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Scope is the club/year an authenticated user acts within.
type Scope struct {
	ClubID         string `db:"club_id"`
	AcademicYearID string `db:"academic_year_id"`
}

type EventRepository struct {
	DB database.IDatabase
}

func NewEventRepository(db database.IDatabase) *EventRepository {
	return &EventRepository{DB: db}
}

type EventRepositoryInterface interface {
	GetScopeByUserID(ctx context.Context, userID string) (*Scope, error)
	CreateEvent(ctx context.Context, event *entity.Event) error
	GetEventByID(ctx context.Context, id string) (*entity.Event, error)
	GetEventsByClubID(ctx context.Context, clubID string) ([]entity.Event, error)
	SetAttendanceToken(ctx context.Context, eventID, token string) error
	CreateParticipant(ctx context.Context, p *entity.Participant) error
	GetParticipantsByEventID(ctx context.Context, eventID string) ([]entity.Participant, error)
	GetParticipantByEmail(ctx context.Context, eventID, email string) (*entity.Participant, error)
	MarkPresent(ctx context.Context, eventID, email string) (bool, error)
	CountParticipantStats(ctx context.Context, eventID string) (*entity.ParticipantStats, error)
}

func (r *EventRepository) GetScopeByUserID(ctx context.Context, userID string) (*Scope, error) {
	query := `SELECT club_id, academic_year_id FROM role_assignments WHERE user_id = $1 LIMIT 1`

	var scope Scope
	err := r.DB.GetContext(ctx, &scope, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetScopeByUserID", err)
		return nil, err
	}
	return &scope, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *entity.Event) error {
	query := `INSERT INTO events (id, club_id, academic_year_id, name, slug, type, date, venue, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.ClubID, event.AcademicYearID, event.Name, event.Slug,
		event.Type, event.Date, event.Venue, event.Description)
	if err != nil {
		logger.Error("EventRepository:CreateEvent", err)
		return err
	}
	return nil
}

func (r *EventRepository) GetEventByID(ctx context.Context, id string) (*entity.Event, error) {
	query := `SELECT id, club_id, academic_year_id, name, slug, type, date, venue, description,
		attendance_token, certificate_template_key, certificate_layout, created_at, updated_at
		FROM events WHERE id = $1`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID", err)
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetEventsByClubID(ctx context.Context, clubID string) ([]entity.Event, error) {
	query := `SELECT id, club_id, academic_year_id, name, slug, type, date, venue, description,
		attendance_token, certificate_template_key, certificate_layout, created_at, updated_at
		FROM events WHERE club_id = $1 ORDER BY date DESC`

	events := []entity.Event{}
	if err := r.DB.SelectContext(ctx, &events, query, clubID); err != nil {
		logger.Error("EventRepository:GetEventsByClubID", err)
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) SetAttendanceToken(ctx context.Context, eventID, token string) error {
	query := `UPDATE events SET attendance_token = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.DB.ExecContext(ctx, query, eventID, token)
	if err != nil {
		logger.Error("EventRepository:SetAttendanceToken", err)
		return err
	}
	return nil
}

func (r *EventRepository) CreateParticipant(ctx context.Context, p *entity.Participant) error {
	query := `INSERT INTO participants (id, event_id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := r.DB.ExecContext(ctx, query, p.ID, p.EventID, p.Name, p.Email, p.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		logger.Error("EventRepository:CreateParticipant", err)
		return err
	}
	return nil
}

func (r *EventRepository) GetParticipantsByEventID(ctx context.Context, eventID string) ([]entity.Participant, error) {
	query := `SELECT id, event_id, name, email, phone, is_present, certificate_generated, certificate_emailed, created_at
		FROM participants WHERE event_id = $1 ORDER BY created_at ASC`

	participants := []entity.Participant{}
	if err := r.DB.SelectContext(ctx, &participants, query, eventID); err != nil {
		logger.Error("EventRepository:GetParticipantsByEventID", err)
		return nil, err
	}
	return participants, nil
}

func (r *EventRepository) GetParticipantByEmail(ctx context.Context, eventID, email string) (*entity.Participant, error) {
	query := `SELECT id, event_id, name, email, phone, is_present, certificate_generated, certificate_emailed, created_at
		FROM participants WHERE event_id = $1 AND email = $2`

	var p entity.Participant
	err := r.DB.GetContext(ctx, &p, query, eventID, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetParticipantByEmail", err)
		return nil, err
	}
	return &p, nil
}

// MarkPresent flips is_present for a registered participant. The
// is_present = false guard makes the double-mark case observable as
// zero rows affected instead of a silent overwrite.
func (r *EventRepository) MarkPresent(ctx context.Context, eventID, email string) (bool, error) {
	query := `UPDATE participants SET is_present = TRUE
		WHERE event_id = $1 AND email = $2 AND is_present = FALSE`

	result, err := r.DB.ExecContext(ctx, query, eventID, email)
	if err != nil {
		logger.Error("EventRepository:MarkPresent", err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *EventRepository) CountParticipantStats(ctx context.Context, eventID string) (*entity.ParticipantStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE is_present) AS present,
		COUNT(*) FILTER (WHERE certificate_generated) AS generated,
		COUNT(*) FILTER (WHERE certificate_emailed) AS emailed
		FROM participants WHERE event_id = $1`

	var stats entity.ParticipantStats
	if err := r.DB.GetContext(ctx, &stats, query, eventID); err != nil {
		logger.Error("EventRepository:CountParticipantStats", err)
		return nil, err
	}
	return &stats, nil
}
