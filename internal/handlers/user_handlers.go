package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandlers handles user management HTTP requests
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsersRequest represents query parameters for listing users
type ListUsersRequest struct {
	OrganizationID string `query:"organization_id"`
	Limit          int    `query:"limit"`
	Offset         int    `query:"offset"`
}

// ListUsers handles getting a list of users, optionally scoped to one
// organization
func (h *UserHandlers) ListUsers(c echo.Context) error {
	var req ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	var orgID *uuid.UUID
	if req.OrganizationID != "" {
		parsed, err := uuid.Parse(req.OrganizationID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid organization ID format")
		}
		orgID = &parsed
	}

	users, err := h.userService.List(c.Request().Context(), orgID, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

// CreateUser handles creating a user. Organization members count
// against the organization's user allowance.
func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email, password, and full name are required")
	}

	user, err := h.userService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// GetUser handles getting user details by ID
func (h *UserHandlers) GetUser(c echo.Context) error {
	userID, err := common.ValidateUUID(c.Param("id"), "user ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUserRequest represents the user update payload
type UpdateUserRequest struct {
	Email     *string    `json:"email"`
	FullName  *string    `json:"full_name"`
	RoleID    *uuid.UUID `json:"role_id"`
	RoleLabel *string    `json:"role_label"`
	Status    *string    `json:"status"`
}

// UpdateUser handles updating user details
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	userID, err := common.ValidateUUID(c.Param("id"), "user ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	existing, err := h.userService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	updateReq := &services.UpdateUserRequest{
		ID:        userID,
		Email:     existing.Email,
		FullName:  existing.FullName,
		RoleID:    existing.RoleID,
		RoleLabel: existing.RoleLabel,
		Status:    existing.Status,
	}
	if req.Email != nil {
		updateReq.Email = *req.Email
	}
	if req.FullName != nil {
		updateReq.FullName = *req.FullName
	}
	if req.RoleID != nil {
		updateReq.RoleID = req.RoleID
	}
	if req.RoleLabel != nil {
		updateReq.RoleLabel = *req.RoleLabel
	}
	if req.Status != nil {
		updateReq.Status = *req.Status
	}

	if err := h.userService.Update(c.Request().Context(), updateReq); err != nil {
		return common.SendDomainError(c, err)
	}

	updated, err := h.userService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteUser handles deleting a user
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	userID, err := common.ValidateUUID(c.Param("id"), "user ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.Delete(c.Request().Context(), userID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}
