package repository

import (
	"context"
	"database/sql"

	"clubops/core/database"
	"clubops/core/logger"
	"clubops/modules/event/entity"

	"github.com/lib/pq"
)

type CertificateRepository struct {
	DB database.IDatabase
}

func NewCertificateRepository(db database.IDatabase) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

type CertificateRepositoryInterface interface {
	GetScopeByUserID(ctx context.Context, userID string) (*Scope, error)
	GetEventByID(ctx context.Context, id string) (*entity.Event, error)
	UpdateTemplateKey(ctx context.Context, eventID, key string) error
	UpdateLayout(ctx context.Context, eventID string, layout []byte) error
	GenerateInTx(ctx context.Context, eventID string, render func(eligible []entity.Participant) error) (int, error)
	EligibleForEmail(ctx context.Context, eventID string) ([]entity.Participant, error)
	GetParticipantWithEvent(ctx context.Context, participantID string) (*entity.Participant, *entity.Event, error)
	MarkEmailed(ctx context.Context, participantID string) error
}

// Scope is the club/year an authenticated user acts within.
type Scope struct {
	ClubID         string `db:"club_id"`
	AcademicYearID string `db:"academic_year_id"`
}

func (r *CertificateRepository) GetScopeByUserID(ctx context.Context, userID string) (*Scope, error) {
	query := `SELECT club_id, academic_year_id FROM role_assignments WHERE user_id = $1 LIMIT 1`

	var scope Scope
	err := r.DB.GetContext(ctx, &scope, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CertificateRepository:GetScopeByUserID", err)
		return nil, err
	}
	return &scope, nil
}

func (r *CertificateRepository) GetEventByID(ctx context.Context, id string) (*entity.Event, error) {
	query := `SELECT id, club_id, academic_year_id, name, slug, type, date, venue, description,
		attendance_token, certificate_template_key, certificate_layout, created_at, updated_at
		FROM events WHERE id = $1`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CertificateRepository:GetEventByID", err)
		return nil, err
	}
	return &event, nil
}

func (r *CertificateRepository) UpdateTemplateKey(ctx context.Context, eventID, key string) error {
	query := `UPDATE events SET certificate_template_key = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.DB.ExecContext(ctx, query, eventID, key); err != nil {
		logger.Error("CertificateRepository:UpdateTemplateKey", err)
		return err
	}
	return nil
}

func (r *CertificateRepository) UpdateLayout(ctx context.Context, eventID string, layout []byte) error {
	query := `UPDATE events SET certificate_layout = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.DB.ExecContext(ctx, query, eventID, layout); err != nil {
		logger.Error("CertificateRepository:UpdateLayout", err)
		return err
	}
	return nil
}

// GenerateInTx selects the generation-eligible participants under a
// row lock, hands them to the render callback, and flips
// certificate_generated for exactly that captured ID set. Everything
// happens in one transaction: a callback error rolls the whole batch
// back with no flags flipped.
func (r *CertificateRepository) GenerateInTx(ctx context.Context, eventID string, render func(eligible []entity.Participant) error) (int, error) {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("CertificateRepository:GenerateInTx:Begin", err)
		return 0, err
	}
	defer tx.Rollback()

	query := `SELECT id, event_id, name, email, phone, is_present, certificate_generated, certificate_emailed, created_at
		FROM participants
		WHERE event_id = $1 AND is_present = TRUE AND certificate_generated = FALSE
		ORDER BY created_at ASC
		FOR UPDATE`

	eligible := []entity.Participant{}
	if err := tx.SelectContext(ctx, &eligible, query, eventID); err != nil {
		logger.Error("CertificateRepository:GenerateInTx:Select", err)
		return 0, err
	}
	if len(eligible) == 0 {
		return 0, tx.Commit()
	}

	if err := render(eligible); err != nil {
		return 0, err
	}

	ids := make([]string, len(eligible))
	for i, p := range eligible {
		ids[i] = p.ID
	}
	update := `UPDATE participants SET certificate_generated = TRUE WHERE id = ANY($1)`
	if _, err := tx.ExecContext(ctx, update, pq.Array(ids)); err != nil {
		logger.Error("CertificateRepository:GenerateInTx:Update", err)
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("CertificateRepository:GenerateInTx:Commit", err)
		return 0, err
	}
	return len(eligible), nil
}

func (r *CertificateRepository) EligibleForEmail(ctx context.Context, eventID string) ([]entity.Participant, error) {
	query := `SELECT id, event_id, name, email, phone, is_present, certificate_generated, certificate_emailed, created_at
		FROM participants
		WHERE event_id = $1 AND is_present = TRUE AND certificate_generated = TRUE AND certificate_emailed = FALSE
		ORDER BY created_at ASC`

	participants := []entity.Participant{}
	if err := r.DB.SelectContext(ctx, &participants, query, eventID); err != nil {
		logger.Error("CertificateRepository:EligibleForEmail", err)
		return nil, err
	}
	return participants, nil
}

func (r *CertificateRepository) GetParticipantWithEvent(ctx context.Context, participantID string) (*entity.Participant, *entity.Event, error) {
	query := `SELECT id, event_id, name, email, phone, is_present, certificate_generated, certificate_emailed, created_at
		FROM participants WHERE id = $1`

	var p entity.Participant
	err := r.DB.GetContext(ctx, &p, query, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		logger.Error("CertificateRepository:GetParticipantWithEvent", err)
		return nil, nil, err
	}

	event, err := r.GetEventByID(ctx, p.EventID)
	if err != nil {
		return nil, nil, err
	}
	return &p, event, nil
}

func (r *CertificateRepository) MarkEmailed(ctx context.Context, participantID string) error {
	query := `UPDATE participants SET certificate_emailed = TRUE WHERE id = $1`

	if _, err := r.DB.ExecContext(ctx, query, participantID); err != nil {
		logger.Error("CertificateRepository:MarkEmailed", err)
		return err
	}
	return nil
}
