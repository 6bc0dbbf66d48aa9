package handlers

import (
	"net/http"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/middleware"
	"harborlink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 72 * time.Hour
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	userService services.UserService
	verifier    *middleware.JWTVerifier
}

func NewAuthHandlers(userService services.UserService, verifier *middleware.JWTVerifier) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		verifier:    verifier,
	}
}

// SignupRequest represents the signup payload
type SignupRequest struct {
	Email          string     `json:"email" validate:"required"`
	Password       string     `json:"password" validate:"required,min=8"`
	FullName       string     `json:"full_name" validate:"required"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	RoleLabel      string     `json:"role_label"`
	PortalType     string     `json:"portal_type"`
}

// Signup handles registering a new user account
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email, password, and full name are required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 8 characters")
	}

	user, err := h.userService.Create(c.Request().Context(), &services.CreateUserRequest{
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		RoleLabel:      req.RoleLabel,
		PortalType:     req.PortalType,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login handles authenticating a user and issuing a token pair
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userService.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and bad password.
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if user.Status != "active" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account is not active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	accessToken, err := h.verifier.IssueToken(user.ID, user.OrganizationID, user.RoleLabel, user.PortalType, accessTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}
	refreshToken, err := h.verifier.IssueToken(user.ID, user.OrganizationID, user.RoleLabel, user.PortalType, refreshTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	})
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles exchanging a refresh token for a new token pair. The
// user record is re-read so role changes take effect on refresh.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	claims, err := h.verifier.ParseClaims(req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	user, err := h.userService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	if user.Status != "active" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account is not active")
	}

	accessToken, err := h.verifier.IssueToken(user.ID, user.OrganizationID, user.RoleLabel, user.PortalType, accessTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}
	refreshToken, err := h.verifier.IssueToken(user.ID, user.OrganizationID, user.RoleLabel, user.PortalType, refreshTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	})
}
