package controller

import (
	"fmt"
	"net/http"
	"net/url"

	"clubops/core/config"
	"clubops/core/constants"
	"clubops/core/controller"
	"clubops/core/errors"
	"clubops/core/utils"
	"clubops/modules/auth/dto"
	"clubops/modules/auth/service"

	"github.com/labstack/echo/v4"
)

const oauthStateCookie = "oauth_state"

type AuthController struct {
	controller.BaseController
	AuthService service.AuthServiceInterface
	Frontend    config.FrontendConfig
}

func NewAuthController(svc service.AuthServiceInterface, frontend config.FrontendConfig) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    svc,
		Frontend:       frontend,
	}
}

func setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     constants.CookieToken,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.CookieToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (a *AuthController) claims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

// Register handles POST /auth/register — public club signup.
func (a *AuthController) Register(c echo.Context) error {
	var req dto.RegisterClubRequest
	if err := c.Bind(&req); err != nil {
		return a.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := a.AuthService.RegisterClub(c.Request().Context(), &req)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}

	setSessionCookie(c, result.Token)
	return a.CreatedResponse(c, result, "Club registered successfully")
}

// Login handles POST /auth/login.
func (a *AuthController) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return a.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := a.AuthService.Login(c.Request().Context(), &req)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}

	setSessionCookie(c, result.Token)
	return a.SuccessResponse(c, result, "Login successful")
}

// Logout handles POST /auth/logout — blacklists the current token.
func (a *AuthController) Logout(c echo.Context) error {
	if raw, ok := c.Get(constants.ContextRawToken).(string); ok && raw != "" {
		if appErr := a.AuthService.Logout(c.Request().Context(), raw); appErr != nil {
			return a.ErrorResponse(c, appErr)
		}
	}
	clearSessionCookie(c)
	return a.SuccessResponse(c, nil, "Logged out")
}

// GoogleAuth handles GET /auth/google — redirects to the consent screen.
func (a *AuthController) GoogleAuth(c echo.Context) error {
	state := utils.GenerateRandomString(constants.OAuthStateLen)
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})

	authURL := a.AuthService.GoogleAuthURL(state)
	if authURL == "" {
		return c.Redirect(http.StatusFound, a.Frontend.URL+"/login?error=google_config")
	}
	return c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback handles GET /auth/google/callback — always redirects to
// the frontend, carrying either a token or an error code.
func (a *AuthController) GoogleCallback(c echo.Context) error {
	loginURL := a.Frontend.URL + "/login?error="

	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, loginURL+"google_config")
	}

	if stateCookie, err := c.Cookie(oauthStateCookie); err != nil || stateCookie.Value != c.QueryParam("state") {
		return c.Redirect(http.StatusFound, loginURL+"state_mismatch")
	}

	token, appErr := a.AuthService.GoogleCallback(c.Request().Context(), code)
	if appErr != nil {
		return c.Redirect(http.StatusFound, loginURL+"google_failed")
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s", a.Frontend.URL, url.QueryEscape(token))
	return c.Redirect(http.StatusFound, redirect)
}

// Session handles POST /auth/session — used after the Google redirect.
func (a *AuthController) Session(c echo.Context) error {
	var req dto.SessionRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return a.BadRequest(errors.ErrInvalidRequestData, "Token required")
	}

	result, appErr := a.AuthService.Session(c.Request().Context(), req.Token)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}

	setSessionCookie(c, req.Token)
	return a.SuccessResponse(c, result, "Session established")
}

// CompleteClub handles POST /auth/complete-club — onboarding for
// Google sign-up users.
func (a *AuthController) CompleteClub(c echo.Context) error {
	claims, ok := a.claims(c)
	if !ok {
		return a.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	var req dto.CompleteClubRequest
	if err := c.Bind(&req); err != nil {
		return a.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	if appErr := a.AuthService.CompleteClub(c.Request().Context(), claims.UserID, &req); appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return a.SuccessResponse(c, map[string]string{"redirect": "events"}, "Club created")
}

// Me handles GET /auth/me.
func (a *AuthController) Me(c echo.Context) error {
	claims, ok := a.claims(c)
	if !ok {
		return a.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := a.AuthService.Me(c.Request().Context(), claims.UserID)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return a.SuccessResponse(c, result, "Success")
}
