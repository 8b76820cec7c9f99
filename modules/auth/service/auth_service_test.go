package service

import (
	"context"
	"testing"

	"clubops/core/config"
	"clubops/core/errors"
	"clubops/core/utils"
	"clubops/modules/auth/dto"
	"clubops/modules/auth/entity"
	"clubops/modules/auth/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.InitJWT("test-secret")
}

type fakeAuthRepo struct {
	users       map[string]*entity.User // by id
	clubs       map[string]*entity.Club // by email
	assignments map[string]*entity.RoleAssignment
	memberships map[string]*entity.Membership
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:       map[string]*entity.User{},
		clubs:       map[string]*entity.Club{},
		assignments: map[string]*entity.RoleAssignment{},
		memberships: map[string]*entity.Membership{},
	}
}

func (f *fakeAuthRepo) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeAuthRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeAuthRepo) GetClubByEmail(_ context.Context, email string) (*entity.Club, error) {
	return f.clubs[email], nil
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, user *entity.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeAuthRepo) CreateClubSetup(_ context.Context, club *entity.Club, year *entity.AcademicYear, assignment *entity.RoleAssignment) error {
	if _, ok := f.clubs[club.ClubEmail]; ok {
		return repository.ErrDuplicate
	}
	f.clubs[club.ClubEmail] = club
	f.assignments[assignment.UserID] = assignment
	return nil
}

func (f *fakeAuthRepo) GetRoleAssignmentByUserID(_ context.Context, userID string) (*entity.RoleAssignment, error) {
	return f.assignments[userID], nil
}

func (f *fakeAuthRepo) GetMembership(_ context.Context, userID string) (*entity.Membership, error) {
	return f.memberships[userID], nil
}

func (f *fakeAuthRepo) HasRole(_ context.Context, userID, role string) (bool, error) {
	a := f.assignments[userID]
	return a != nil && a.Role == role, nil
}

func validRegisterRequest() *dto.RegisterClubRequest {
	return &dto.RegisterClubRequest{
		ClubName:    "Robotics Club",
		CollegeName: "NIT Trichy",
		ClubEmail:   "robotics@nitt.edu",
		AdminName:   "Priya",
		AdminEmail:  "priya@nitt.edu",
		Password:    "supersecret",
	}
}

func newTestAuthService(repo repository.AuthRepositoryInterface) AuthServiceInterface {
	return NewAuthService(repo, nil, config.GoogleConfig{})
}

func TestRegisterClub(t *testing.T) {
	t.Run("success issues token and admin role", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newTestAuthService(repo)

		resp, appErr := svc.RegisterClub(context.Background(), validRegisterRequest())
		require.Nil(t, appErr)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Priya", resp.User.Name)
		require.NotNil(t, resp.Club)

		assignment := repo.assignments[resp.User.ID]
		require.NotNil(t, assignment)
		assert.Equal(t, "ADMIN", assignment.Role)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := newTestAuthService(newFakeAuthRepo())
		req := validRegisterRequest()
		req.Password = "short"

		_, appErr := svc.RegisterClub(context.Background(), req)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("duplicate club email conflicts", func(t *testing.T) {
		repo := newFakeAuthRepo()
		repo.clubs["robotics@nitt.edu"] = &entity.Club{ID: "c-1", ClubEmail: "robotics@nitt.edu"}
		svc := newTestAuthService(repo)

		_, appErr := svc.RegisterClub(context.Background(), validRegisterRequest())
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrAlreadyExists, appErr.Code)
	})

	t.Run("duplicate admin email conflicts", func(t *testing.T) {
		repo := newFakeAuthRepo()
		repo.users["u-1"] = &entity.User{ID: "u-1", Email: "priya@nitt.edu"}
		svc := newTestAuthService(repo)

		_, appErr := svc.RegisterClub(context.Background(), validRegisterRequest())
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrAlreadyExists, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	repo := newFakeAuthRepo()
	hash, err := utils.HashPassword("supersecret")
	require.NoError(t, err)
	repo.users["u-1"] = &entity.User{ID: "u-1", Name: "Priya", Email: "priya@nitt.edu", PasswordHash: hash}
	svc := newTestAuthService(repo)

	t.Run("unknown email", func(t *testing.T) {
		_, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@nitt.edu", Password: "whatever"})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "priya@nitt.edu", Password: "nope-nope"})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	})

	t.Run("success", func(t *testing.T) {
		resp, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "Priya@NITT.edu", Password: "supersecret"})
		require.Nil(t, appErr)
		assert.NotEmpty(t, resp.Token)

		claims, err := utils.ValidateAndParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
	})
}

func TestCompleteClub(t *testing.T) {
	t.Run("rejects a second club", func(t *testing.T) {
		repo := newFakeAuthRepo()
		repo.assignments["u-1"] = &entity.RoleAssignment{UserID: "u-1", Role: "ADMIN"}
		svc := newTestAuthService(repo)

		appErr := svc.CompleteClub(context.Background(), "u-1", &dto.CompleteClubRequest{
			ClubName: "Another", CollegeName: "NITT", ClubEmail: "another@nitt.edu",
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("creates club and admin assignment", func(t *testing.T) {
		repo := newFakeAuthRepo()
		svc := newTestAuthService(repo)

		appErr := svc.CompleteClub(context.Background(), "u-1", &dto.CompleteClubRequest{
			ClubName: "Robotics Club", CollegeName: "NITT", ClubEmail: "robotics@nitt.edu",
		})
		require.Nil(t, appErr)
		require.NotNil(t, repo.clubs["robotics@nitt.edu"])
		assert.Equal(t, "ADMIN", repo.assignments["u-1"].Role)
	})
}

func TestSessionRedirect(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(repo)

	token, err := utils.GenerateToken("u-1")
	require.NoError(t, err)

	t.Run("without club goes to onboarding", func(t *testing.T) {
		resp, appErr := svc.Session(context.Background(), token)
		require.Nil(t, appErr)
		assert.Equal(t, "onboarding", resp.Redirect)
	})

	t.Run("with club goes to events", func(t *testing.T) {
		repo.assignments["u-1"] = &entity.RoleAssignment{UserID: "u-1", Role: "ADMIN"}
		resp, appErr := svc.Session(context.Background(), token)
		require.Nil(t, appErr)
		assert.Equal(t, "events", resp.Redirect)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, appErr := svc.Session(context.Background(), "garbage")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	})
}

func TestMe(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(repo)

	t.Run("no membership", func(t *testing.T) {
		_, appErr := svc.Me(context.Background(), "u-1")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})

	t.Run("returns joined membership", func(t *testing.T) {
		repo.memberships["u-1"] = &entity.Membership{
			UserID: "u-1", UserName: "Priya", UserEmail: "priya@nitt.edu",
			ClubID: "c-1", ClubName: "Robotics Club", YearLabel: "2024-25", Role: "ADMIN",
		}
		resp, appErr := svc.Me(context.Background(), "u-1")
		require.Nil(t, appErr)
		assert.Equal(t, "Robotics Club", resp.Club.Name)
		assert.Equal(t, "ADMIN", resp.Role)
		assert.Equal(t, "2024-25", resp.AcademicYear.YearLabel)
	})
}
