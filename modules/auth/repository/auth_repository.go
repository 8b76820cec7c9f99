package repository

import (
	"context"
	"database/sql"
	"errors"

	"clubops/core/database"
	"clubops/core/logger"
	"clubops/modules/auth/entity"

	"github.com/lib/pq"
)

// ErrDuplicate maps a unique-constraint violation to a business conflict.
var ErrDuplicate = errors.New("duplicate record")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type AuthRepository struct {
	DB database.IDatabase
}

func NewAuthRepository(db database.IDatabase) *AuthRepository {
	return &AuthRepository{DB: db}
}

type AuthRepositoryInterface interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetClubByEmail(ctx context.Context, email string) (*entity.Club, error)
	CreateUser(ctx context.Context, user *entity.User) error
	CreateClubSetup(ctx context.Context, club *entity.Club, year *entity.AcademicYear, assignment *entity.RoleAssignment) error
	GetRoleAssignmentByUserID(ctx context.Context, userID string) (*entity.RoleAssignment, error)
	GetMembership(ctx context.Context, userID string) (*entity.Membership, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AuthRepository:GetUserByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AuthRepository:GetUserByEmail", err)
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) GetClubByEmail(ctx context.Context, email string) (*entity.Club, error) {
	query := `SELECT id, name, college_name, club_email, created_at, updated_at FROM clubs WHERE club_email = $1`

	var club entity.Club
	err := r.DB.GetContext(ctx, &club, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AuthRepository:GetClubByEmail", err)
		return nil, err
	}
	return &club, nil
}

func (r *AuthRepository) CreateUser(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		logger.Error("AuthRepository:CreateUser", err)
		return err
	}
	return nil
}

// CreateClubSetup inserts club, academic year and role assignment in one
// transaction so onboarding never leaves a club without an admin.
func (r *AuthRepository) CreateClubSetup(ctx context.Context, club *entity.Club, year *entity.AcademicYear, assignment *entity.RoleAssignment) error {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("AuthRepository:CreateClubSetup:Begin", err)
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clubs (id, name, college_name, club_email) VALUES ($1, $2, $3, $4)`,
		club.ID, club.Name, club.CollegeName, club.ClubEmail)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		logger.Error("AuthRepository:CreateClubSetup:Club", err)
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO academic_years (id, club_id, year_label, is_active) VALUES ($1, $2, $3, $4)`,
		year.ID, year.ClubID, year.YearLabel, year.IsActive)
	if err != nil {
		logger.Error("AuthRepository:CreateClubSetup:AcademicYear", err)
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO role_assignments (id, user_id, club_id, academic_year_id, role) VALUES ($1, $2, $3, $4, $5)`,
		assignment.ID, assignment.UserID, assignment.ClubID, assignment.AcademicYearID, assignment.Role)
	if err != nil {
		logger.Error("AuthRepository:CreateClubSetup:RoleAssignment", err)
		return err
	}

	return tx.Commit()
}

func (r *AuthRepository) GetRoleAssignmentByUserID(ctx context.Context, userID string) (*entity.RoleAssignment, error) {
	query := `
		SELECT id, user_id, club_id, academic_year_id, role
		FROM role_assignments WHERE user_id = $1
		LIMIT 1
	`

	var assignment entity.RoleAssignment
	err := r.DB.GetContext(ctx, &assignment, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AuthRepository:GetRoleAssignmentByUserID", err)
		return nil, err
	}
	return &assignment, nil
}

func (r *AuthRepository) GetMembership(ctx context.Context, userID string) (*entity.Membership, error) {
	query := `
		SELECT ra.user_id, u.name AS user_name, u.email AS user_email,
		       ra.club_id, c.name AS club_name,
		       ra.academic_year_id, ay.year_label, ra.role
		FROM role_assignments ra
		JOIN users u ON u.id = ra.user_id
		JOIN clubs c ON c.id = ra.club_id
		JOIN academic_years ay ON ay.id = ra.academic_year_id
		WHERE ra.user_id = $1
		LIMIT 1
	`

	var m entity.Membership
	err := r.DB.GetContext(ctx, &m, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AuthRepository:GetMembership", err)
		return nil, err
	}
	return &m, nil
}

func (r *AuthRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM role_assignments WHERE user_id = $1 AND role = $2)`

	var exists bool
	if err := r.DB.GetContext(ctx, &exists, query, userID, role); err != nil {
		logger.Error("AuthRepository:HasRole", err)
		return false, err
	}
	return exists, nil
}
