package handlers

import (
	"net/http"

	"harborlink/internal/authz"
	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// RoleHandlers handles role and permission HTTP requests
type RoleHandlers struct {
	roleService services.RoleService
	rbacService services.RBACService
}

func NewRoleHandlers(roleService services.RoleService, rbacService services.RBACService) *RoleHandlers {
	return &RoleHandlers{
		roleService: roleService,
		rbacService: rbacService,
	}
}

// ListRolesRequest represents query parameters for listing roles
type ListRolesRequest struct {
	PortalType string `query:"portal_type"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// ListRoles handles getting a list of roles
func (h *RoleHandlers) ListRoles(c echo.Context) error {
	var req ListRolesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	roles, err := h.roleService.List(c.Request().Context(), req.PortalType, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"roles":  roles,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

// CreateRole handles creating a new role
func (h *RoleHandlers) CreateRole(c echo.Context) error {
	var req services.CreateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" || req.PortalType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and portal type are required")
	}

	role, err := h.roleService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, role)
}

// GetRole handles getting role details by ID
func (h *RoleHandlers) GetRole(c echo.Context) error {
	roleID, err := common.ValidateUUID(c.Param("id"), "role ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roleService.GetByID(c.Request().Context(), roleID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, role)
}

// UpdateRole handles updating a role's name and permission set
func (h *RoleHandlers) UpdateRole(c echo.Context) error {
	roleID, err := common.ValidateUUID(c.Param("id"), "role ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = roleID

	if err := h.roleService.Update(c.Request().Context(), &req); err != nil {
		return common.SendDomainError(c, err)
	}

	role, err := h.roleService.GetByID(c.Request().Context(), roleID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, role)
}

// DeleteRole handles deleting a role. Users still referencing it fall
// back to label resolution on their next permission check.
func (h *RoleHandlers) DeleteRole(c echo.Context) error {
	roleID, err := common.ValidateUUID(c.Param("id"), "role ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.roleService.Delete(c.Request().Context(), roleID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Role deleted successfully",
	})
}

// ResolvePermissionsRequest represents query parameters for dry-running
// role label resolution
type ResolvePermissionsRequest struct {
	Label string `query:"label"`
}

// ResolvePermissions handles resolving a free-form role label to its
// role class and granted permissions without touching any stored user
func (h *RoleHandlers) ResolvePermissions(c echo.Context) error {
	var req ResolvePermissionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Label == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Label is required")
	}

	class := authz.ResolveRole(req.Label)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"label":       req.Label,
		"role_class":  class,
		"permissions": authz.GrantedPermissions(class),
	})
}

// GetMyPermissions handles returning the calling user's effective
// permission list
func (h *RoleHandlers) GetMyPermissions(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	perms, err := h.rbacService.GetUserPermissions(c.Request().Context(), userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"permissions": perms,
	})
}
