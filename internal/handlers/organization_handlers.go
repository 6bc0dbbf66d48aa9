package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// OrganizationHandlers handles organization HTTP requests
type OrganizationHandlers struct {
	orgService services.OrganizationService
}

func NewOrganizationHandlers(orgService services.OrganizationService) *OrganizationHandlers {
	return &OrganizationHandlers{orgService: orgService}
}

// ListOrganizationsRequest represents query parameters for listing organizations
type ListOrganizationsRequest struct {
	Type   string `query:"type"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListOrganizations handles getting a list of organizations
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	var req ListOrganizationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	orgs, err := h.orgService.List(c.Request().Context(), req.Type, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"organizations": orgs,
		"limit":         req.Limit,
		"offset":        req.Offset,
	})
}

// CreateOrganization handles creating a new organization
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	var req services.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" || req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and type are required")
	}

	org, err := h.orgService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, org)
}

// GetOrganization handles getting organization details by ID
func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("id"), "organization ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	org, err := h.orgService.GetByID(c.Request().Context(), orgID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, org)
}

// UpdateOrganizationRequest represents the organization update payload.
// The organization type is immutable after creation and deliberately
// absent here.
type UpdateOrganizationRequest struct {
	Name       *string `json:"name"`
	PortalType *string `json:"portal_type"`
	Active     *bool   `json:"active"`
}

// UpdateOrganization handles updating organization details
func (h *OrganizationHandlers) UpdateOrganization(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("id"), "organization ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	existing, err := h.orgService.GetByID(c.Request().Context(), orgID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	updateReq := &services.UpdateOrganizationRequest{
		ID:         orgID,
		Name:       existing.Name,
		PortalType: existing.PortalType,
		Active:     existing.Active,
	}
	if req.Name != nil {
		updateReq.Name = *req.Name
	}
	if req.PortalType != nil {
		updateReq.PortalType = *req.PortalType
	}
	if req.Active != nil {
		updateReq.Active = *req.Active
	}

	if err := h.orgService.Update(c.Request().Context(), updateReq); err != nil {
		return common.SendDomainError(c, err)
	}

	updated, err := h.orgService.GetByID(c.Request().Context(), orgID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteOrganization handles removing an organization. Organizations
// with users or licenses are deactivated rather than deleted.
func (h *OrganizationHandlers) DeleteOrganization(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("id"), "organization ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.orgService.Remove(c.Request().Context(), orgID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Organization removed successfully",
	})
}
