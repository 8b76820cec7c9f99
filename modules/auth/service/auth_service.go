package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"clubops/core/cache"
	"clubops/core/config"
	"clubops/core/constants"
	"clubops/core/errors"
	"clubops/core/logger"
	"clubops/core/utils"
	"clubops/modules/auth/dto"
	"clubops/modules/auth/entity"
	"clubops/modules/auth/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService struct {
	repo        repository.AuthRepositoryInterface
	cache       *cache.Cache
	googleOAuth *oauth2.Config
}

type AuthServiceInterface interface {
	RegisterClub(ctx context.Context, req *dto.RegisterClubRequest) (*dto.AuthResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError)
	Logout(ctx context.Context, rawToken string) *errors.AppError
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (string, *errors.AppError)
	Session(ctx context.Context, token string) (*dto.SessionResponse, *errors.AppError)
	CompleteClub(ctx context.Context, userID string, req *dto.CompleteClubRequest) *errors.AppError
	Me(ctx context.Context, userID string) (*dto.MeResponse, *errors.AppError)
}

func NewAuthService(repo repository.AuthRepositoryInterface, c *cache.Cache, googleCfg config.GoogleConfig) AuthServiceInterface {
	var oauthCfg *oauth2.Config
	if googleCfg.ClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &AuthService{
		repo:        repo,
		cache:       c,
		googleOAuth: oauthCfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultYearLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "2024-25"
	}
	return label
}

func (s *AuthService) RegisterClub(ctx context.Context, req *dto.RegisterClubRequest) (*dto.AuthResponse, *errors.AppError) {
	if req.ClubName == "" || req.CollegeName == "" || req.ClubEmail == "" ||
		req.AdminName == "" || req.AdminEmail == "" || req.Password == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			"Club name, college, club email, admin name, admin email and password are required", nil)
	}
	if len(req.Password) < 8 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Password must be at least 8 characters", nil)
	}

	clubEmail := normalizeEmail(req.ClubEmail)
	adminEmail := normalizeEmail(req.AdminEmail)

	existingClub, err := s.repo.GetClubByEmail(ctx, clubEmail)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check club email", err)
	}
	if existingClub != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "A club with this email is already registered", nil)
	}

	existingUser, err := s.repo.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check admin email", err)
	}
	if existingUser != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "This admin email is already in use", nil)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash password", err)
	}

	user := &entity.User{
		ID:           utils.GenerateID(),
		Name:         strings.TrimSpace(req.AdminName),
		Email:        adminEmail,
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "This admin email is already in use", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create user", err)
	}

	club := &entity.Club{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(req.ClubName),
		CollegeName: strings.TrimSpace(req.CollegeName),
		ClubEmail:   clubEmail,
	}
	year := &entity.AcademicYear{
		ID:        utils.GenerateID(),
		ClubID:    club.ID,
		YearLabel: defaultYearLabel(req.AcademicYearLabel),
		IsActive:  true,
	}
	assignment := &entity.RoleAssignment{
		ID:             utils.GenerateID(),
		UserID:         user.ID,
		ClubID:         club.ID,
		AcademicYearID: year.ID,
		Role:           constants.RoleAdmin,
	}
	if err := s.repo.CreateClubSetup(ctx, club, year, assignment); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "A club with this email is already registered", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to register club", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		Club:  &dto.ClubResponse{ID: club.ID, Name: club.Name},
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Email and password required", nil)
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to look up user", err)
	}
	if user == nil || !utils.ComparePassword(user.PasswordHash, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid credentials", nil)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) *errors.AppError {
	claims, err := utils.ValidateAndParseToken(rawToken)
	if err != nil {
		// Nothing to blacklist for an already-invalid token.
		return nil
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.AddToTokenBlacklist(ctx, rawToken, utils.TokenRemainingTTL(claims)); err != nil {
		logger.Error("AuthService:Logout:AddToTokenBlacklist", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to revoke token", err)
	}
	return nil
}

func (s *AuthService) GoogleAuthURL(state string) string {
	if s.googleOAuth == nil {
		return ""
	}
	return s.googleOAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback exchanges the OAuth code, finds or creates the user and
// returns a signed session token.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (string, *errors.AppError) {
	if s.googleOAuth == nil {
		return "", errors.NewAppError(errors.ErrPreconditionFailed, "Google OAuth is not configured", nil)
	}

	oauthToken, err := s.googleOAuth.Exchange(ctx, code)
	if err != nil {
		return "", errors.NewAppError(errors.ErrUnauthorized, "Failed to exchange authorization code", err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, oauthToken)
	if err != nil {
		return "", errors.NewAppError(errors.ErrTransportFailure, "Failed to fetch Google profile", err)
	}
	if info.Email == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "Google account has no email", nil)
	}

	email := normalizeEmail(info.Email)
	name := info.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to look up user", err)
	}
	if user == nil {
		// Password login stays disabled for OAuth-created accounts.
		randomHash, hashErr := utils.HashPassword(utils.GenerateRandomString(32))
		if hashErr != nil {
			return "", errors.NewAppError(errors.ErrInternalServer, "Failed to create user", hashErr)
		}
		user = &entity.User{
			ID:           utils.GenerateID(),
			Name:         name,
			Email:        email,
			PasswordHash: randomHash,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil && err != repository.ErrDuplicate {
			return "", errors.NewAppError(errors.ErrInternalServer, "Failed to create user", err)
		}
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}
	return token, nil
}

func (s *AuthService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.googleOAuth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *AuthService) Session(ctx context.Context, token string) (*dto.SessionResponse, *errors.AppError) {
	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token", err)
	}

	assignment, err := s.repo.GetRoleAssignmentByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve role", err)
	}

	redirect := "onboarding"
	if assignment != nil {
		redirect = "events"
	}
	return &dto.SessionResponse{Redirect: redirect}, nil
}

func (s *AuthService) CompleteClub(ctx context.Context, userID string, req *dto.CompleteClubRequest) *errors.AppError {
	if req.ClubName == "" || req.CollegeName == "" || req.ClubEmail == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "Club name, college, and club email are required", nil)
	}

	existing, err := s.repo.GetRoleAssignmentByUserID(ctx, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to resolve role", err)
	}
	if existing != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "You already have a club", nil)
	}

	clubEmail := normalizeEmail(req.ClubEmail)
	existingClub, err := s.repo.GetClubByEmail(ctx, clubEmail)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to check club email", err)
	}
	if existingClub != nil {
		return errors.NewAppError(errors.ErrAlreadyExists, "A club with this email is already registered", nil)
	}

	club := &entity.Club{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(req.ClubName),
		CollegeName: strings.TrimSpace(req.CollegeName),
		ClubEmail:   clubEmail,
	}
	year := &entity.AcademicYear{
		ID:        utils.GenerateID(),
		ClubID:    club.ID,
		YearLabel: defaultYearLabel(req.AcademicYearLabel),
		IsActive:  true,
	}
	assignment := &entity.RoleAssignment{
		ID:             utils.GenerateID(),
		UserID:         userID,
		ClubID:         club.ID,
		AcademicYearID: year.ID,
		Role:           constants.RoleAdmin,
	}
	if err := s.repo.CreateClubSetup(ctx, club, year, assignment); err != nil {
		if err == repository.ErrDuplicate {
			return errors.NewAppError(errors.ErrAlreadyExists, "A club with this email is already registered", nil)
		}
		return errors.NewAppError(errors.ErrInternalServer, "Failed to create club", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*dto.MeResponse, *errors.AppError) {
	membership, err := s.repo.GetMembership(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load membership", err)
	}
	if membership == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "No active role", nil)
	}

	resp := &dto.MeResponse{
		User: dto.UserResponse{ID: membership.UserID, Name: membership.UserName, Email: membership.UserEmail},
		Club: dto.ClubResponse{ID: membership.ClubID, Name: membership.ClubName},
		Role: membership.Role,
	}
	resp.AcademicYear.YearLabel = membership.YearLabel
	return resp, nil
}
