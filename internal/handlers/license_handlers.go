package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// LicenseHandlers handles license administration HTTP requests
type LicenseHandlers struct {
	licenseService services.LicenseService
}

func NewLicenseHandlers(licenseService services.LicenseService) *LicenseHandlers {
	return &LicenseHandlers{licenseService: licenseService}
}

// ListLicensesRequest represents query parameters for listing licenses
type ListLicensesRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListLicenses handles getting a list of licenses
func (h *LicenseHandlers) ListLicenses(c echo.Context) error {
	var req ListLicensesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	licenses, err := h.licenseService.List(c.Request().Context(), req.Status, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"licenses": licenses,
		"limit":    req.Limit,
		"offset":   req.Offset,
	})
}

// GetLicense handles getting license details by ID
func (h *LicenseHandlers) GetLicense(c echo.Context) error {
	licenseID, err := common.ValidateUUID(c.Param("id"), "license ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	license, err := h.licenseService.GetByID(c.Request().Context(), licenseID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, license)
}

// IssueLicenseRequest represents the manual issuance payload
type IssueLicenseRequest struct {
	OrganizationID   string `json:"organization_id" validate:"required"`
	RequestedVessels int    `json:"requested_vessels"`
}

// IssueLicense handles issuing a license outside the onboarding flow.
// The one-blocking-license rule still applies.
func (h *LicenseHandlers) IssueLicense(c echo.Context) error {
	var req IssueLicenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	orgID, err := common.ValidateUUID(req.OrganizationID, "organization ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	license, err := h.licenseService.Issue(c.Request().Context(), orgID, req.RequestedVessels)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, license)
}

// SuspendLicense handles suspending an active license
func (h *LicenseHandlers) SuspendLicense(c echo.Context) error {
	licenseID, err := common.ValidateUUID(c.Param("id"), "license ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.licenseService.Suspend(c.Request().Context(), licenseID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "License suspended",
	})
}

// RevokeLicense handles revoking a license
func (h *LicenseHandlers) RevokeLicense(c echo.Context) error {
	licenseID, err := common.ValidateUUID(c.Param("id"), "license ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.licenseService.Revoke(c.Request().Context(), licenseID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "License revoked",
	})
}
