package entity

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Club struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CollegeName string    `db:"college_name" json:"college_name"`
	ClubEmail   string    `db:"club_email" json:"club_email"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type AcademicYear struct {
	ID        string `db:"id" json:"id"`
	ClubID    string `db:"club_id" json:"club_id"`
	YearLabel string `db:"year_label" json:"year_label"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

type RoleAssignment struct {
	ID             string `db:"id" json:"id"`
	UserID         string `db:"user_id" json:"user_id"`
	ClubID         string `db:"club_id" json:"club_id"`
	AcademicYearID string `db:"academic_year_id" json:"academic_year_id"`
	Role           string `db:"role" json:"role"`
}

// Membership is the joined view behind GET /auth/me and event club scoping.
type Membership struct {
	UserID         string `db:"user_id"`
	UserName       string `db:"user_name"`
	UserEmail      string `db:"user_email"`
	ClubID         string `db:"club_id"`
	ClubName       string `db:"club_name"`
	AcademicYearID string `db:"academic_year_id"`
	YearLabel      string `db:"year_label"`
	Role           string `db:"role"`
}
